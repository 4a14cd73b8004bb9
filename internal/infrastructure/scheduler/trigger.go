package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TriggerConfig holds configuration for the periodic trigger
type TriggerConfig struct {
	// RefreshInterval is how often the dashboard is re-aggregated; zero disables it
	RefreshInterval time.Duration

	// ArchiveHour and ArchiveMinute set the daily snapshot archive time (24h)
	ArchiveEnabled bool
	ArchiveHour    int
	ArchiveMinute  int

	// CheckInterval is how often to check if it's time to archive
	CheckInterval time.Duration
}

// DefaultTriggerConfig returns default trigger configuration
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		RefreshInterval: 5 * time.Minute,
		ArchiveEnabled:  true,
		ArchiveHour:     23,
		ArchiveMinute:   55,
		CheckInterval:   time.Minute,
	}
}

// Trigger submits refresh and archive jobs on their schedules
type Trigger struct {
	config    TriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastArchive string // date of the last archive run
}

// NewTrigger creates a new trigger
func NewTrigger(config TriggerConfig, scheduler *Scheduler, logger *zap.Logger) *Trigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &Trigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the trigger loops
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	if t.config.RefreshInterval > 0 {
		t.wg.Add(1)
		go t.loop(ctx, t.config.RefreshInterval, func() {
			t.submit(JobTypeDashboardRefresh)
		})
	}
	if t.config.ArchiveEnabled {
		t.wg.Add(1)
		go t.loop(ctx, t.config.CheckInterval, t.checkArchive)
	}

	t.logger.Info("Job trigger started",
		zap.Duration("refresh_interval", t.config.RefreshInterval),
		zap.Bool("archive_enabled", t.config.ArchiveEnabled),
		zap.Int("archive_hour", t.config.ArchiveHour),
		zap.Int("archive_minute", t.config.ArchiveMinute),
	)
	return nil
}

// Stop stops the trigger
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Job trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Trigger) loop(ctx context.Context, every time.Duration, fn func()) {
	defer t.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// checkArchive submits the archive job once per day at the configured time
func (t *Trigger) checkArchive() {
	now := t.now()
	if !t.shouldArchive(now) {
		return
	}
	t.submit(JobTypeSnapshotArchive)
}

func (t *Trigger) shouldArchive(now time.Time) bool {
	if now.Hour() != t.config.ArchiveHour || now.Minute() != t.config.ArchiveMinute {
		return false
	}
	today := now.Format("2006-01-02")

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastArchive == today {
		return false
	}
	t.lastArchive = today
	return true
}

func (t *Trigger) submit(jobType JobType) {
	if err := t.scheduler.Schedule(jobType); err != nil {
		t.logger.Warn("Failed to submit scheduled job",
			zap.String("job_type", string(jobType)),
			zap.Error(err),
		)
	}
}

// ParseCronSchedule parses the minute and hour fields of a simple daily cron
// expression ("M H * * *"). Empty input yields 23:55.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 23
	minute = 55

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if minute, err = strconv.Atoi(parts[0]); err != nil {
			return 23, 55, fmt.Errorf("invalid minute %q: %w", parts[0], err)
		}
	}
	if parts[1] != "*" {
		if hour, err = strconv.Atoi(parts[1]); err != nil {
			return 23, 55, fmt.Errorf("invalid hour %q: %w", parts[1], err)
		}
	}

	if minute < 0 || minute > 59 {
		return 23, 55, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 23, 55, fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	return hour, minute, nil
}
