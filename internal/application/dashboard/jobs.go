package dashboard

import (
	"context"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/scheduler"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Jobs executes the scheduled dashboard jobs
type Jobs struct {
	service *DashboardService
	metrics *telemetry.DashboardMetrics
	logger  *zap.Logger
}

// NewJobs creates the dashboard job executor
func NewJobs(service *DashboardService, metrics *telemetry.DashboardMetrics, logger *zap.Logger) *Jobs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Jobs{service: service, metrics: metrics, logger: logger}
}

// Router maps each dashboard job type to its executor
func (j *Jobs) Router() scheduler.Router {
	return scheduler.Router{
		scheduler.JobTypeDashboardRefresh: scheduler.JobExecutorFunc(j.refresh),
		scheduler.JobTypeSnapshotArchive:  scheduler.JobExecutorFunc(j.archive),
	}
}

// Execute implements scheduler.JobExecutor
func (j *Jobs) Execute(ctx context.Context, job *scheduler.Job) error {
	return j.Router().Execute(ctx, job)
}

func (j *Jobs) refresh(ctx context.Context, job *scheduler.Job) error {
	view, err := j.service.Refresh(ctx)
	j.metrics.RecordJobRun(ctx, string(job.Type), err)
	if err != nil {
		return err
	}
	j.logger.Debug("Scheduled dashboard refresh completed",
		zap.String("job_id", job.ID.String()),
		zap.Int("failed_sources", len(view.Snapshot.Failures)),
	)
	return nil
}

func (j *Jobs) archive(ctx context.Context, job *scheduler.Job) error {
	key, err := j.service.Archive(ctx)
	j.metrics.RecordJobRun(ctx, string(job.Type), err)
	if err != nil {
		return err
	}
	j.logger.Info("Scheduled snapshot archive completed",
		zap.String("job_id", job.ID.String()),
		zap.String("key", key),
	)
	return nil
}
