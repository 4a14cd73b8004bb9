package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/quantityupdate"
)

const maxAuditPageSize = 200

// ReviewAuditModel is the GORM model for review audit entries
type ReviewAuditModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID   string    `gorm:"type:varchar(64);index;not null"`
	CustomerID  string    `gorm:"type:varchar(64)"`
	Action      string    `gorm:"type:varchar(16);index;not null"`
	OldQuantity float64   `gorm:"not null;default:0"`
	NewQuantity float64   `gorm:"not null;default:0"`
	Reason      string    `gorm:"type:text"`
	Actor       string    `gorm:"type:varchar(128)"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

// TableName returns the table name for the model
func (ReviewAuditModel) TableName() string {
	return "review_audit_log"
}

// ToEntity converts the model to a domain entry
func (m *ReviewAuditModel) ToEntity() quantityupdate.AuditEntry {
	return quantityupdate.AuditEntry{
		ID:          m.ID.String(),
		RequestID:   m.RequestID,
		CustomerID:  m.CustomerID,
		Action:      quantityupdate.AuditAction(m.Action),
		OldQuantity: m.OldQuantity,
		NewQuantity: m.NewQuantity,
		Reason:      m.Reason,
		Actor:       m.Actor,
		CreatedAt:   m.CreatedAt,
	}
}

// ReviewAuditModelFromEntity creates a model from a domain entry
func ReviewAuditModelFromEntity(e *quantityupdate.AuditEntry) *ReviewAuditModel {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &ReviewAuditModel{
		ID:          id,
		RequestID:   e.RequestID,
		CustomerID:  e.CustomerID,
		Action:      string(e.Action),
		OldQuantity: e.OldQuantity,
		NewQuantity: e.NewQuantity,
		Reason:      e.Reason,
		Actor:       e.Actor,
		CreatedAt:   createdAt,
	}
}

// ReviewAuditRepository implements the quantityupdate.AuditRepository interface
type ReviewAuditRepository struct {
	db *gorm.DB
}

// NewReviewAuditRepository creates a new review audit repository
func NewReviewAuditRepository(db *gorm.DB) *ReviewAuditRepository {
	return &ReviewAuditRepository{db: db}
}

// Save appends an entry, filling in its ID and timestamp
func (r *ReviewAuditRepository) Save(ctx context.Context, entry *quantityupdate.AuditEntry) error {
	model := ReviewAuditModelFromEntity(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	entry.ID = model.ID.String()
	entry.CreatedAt = model.CreatedAt
	return nil
}

// FindAll lists entries newest first with the total matching count
func (r *ReviewAuditRepository) FindAll(ctx context.Context, filter quantityupdate.AuditFilter) ([]quantityupdate.AuditEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&ReviewAuditModel{})
	if filter.RequestID != "" {
		query = query.Where("request_id = ?", filter.RequestID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxAuditPageSize {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var models []ReviewAuditModel
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]quantityupdate.AuditEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntity()
	}
	return entries, total, nil
}

// Ensure ReviewAuditRepository implements AuditRepository
var _ quantityupdate.AuditRepository = (*ReviewAuditRepository)(nil)
