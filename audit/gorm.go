package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/micromata/datatransfer-backend/models"
)

// GormLog persists audit entries in the relational store, next to the area
// metadata they describe.
type GormLog struct {
	db *gorm.DB
}

func NewGormLog(db *gorm.DB) *GormLog {
	return &GormLog{db: db}
}

func (l *GormLog) Append(ctx context.Context, entry *models.AuditEntry) error {
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (l *GormLog) ByArea(ctx context.Context, areaID uuid.UUID) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := l.db.WithContext(ctx).
		Where("area_id = ?", areaID).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("audit entries for area %s: %w", areaID, err)
	}
	return entries, nil
}

func (l *GormLog) Unnotified(ctx context.Context) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := l.db.WithContext(ctx).
		Where("notifications_sent = ?", false).
		Order("timestamp ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("unnotified audit entries: %w", err)
	}
	return entries, nil
}

func (l *GormLog) MarkNotified(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := l.db.WithContext(ctx).Model(&models.AuditEntry{}).
		Where("id IN ?", ids).
		Update("notifications_sent", true).Error
	if err != nil {
		return fmt.Errorf("mark audit entries notified: %w", err)
	}
	return nil
}

func (l *GormLog) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := l.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.AuditEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge audit entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
