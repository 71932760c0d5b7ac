package areas

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

// GormStore reads area metadata from the suite's relational store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Find(ctx context.Context, areaID uuid.UUID) (*models.Area, error) {
	var area models.Area
	err := s.db.WithContext(ctx).First(&area, "id = ?", areaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find area %s: %w", areaID, err)
	}
	return &area, nil
}

func (s *GormStore) FindByToken(ctx context.Context, token string) (*models.Area, error) {
	var area models.Area
	err := s.db.WithContext(ctx).First(&area, "external_access_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find area by token: %w", err)
	}
	return &area, nil
}

func (s *GormStore) All(ctx context.Context) ([]models.Area, error) {
	var list []models.Area
	if err := s.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return list, nil
}

func (s *GormStore) UpdateIndexFields(ctx context.Context, areaID uuid.UUID, names, fileIDs string, counter int, totalSize int64) error {
	res := s.db.WithContext(ctx).Model(&models.Area{}).
		Where("id = ?", areaID).
		Updates(map[string]interface{}{
			"attachment_names":    names,
			"attachment_file_ids": fileIDs,
			"attachment_counter":  counter,
			"attachments_size":    totalSize,
		})
	if res.Error != nil {
		return fmt.Errorf("update index fields for area %s: %w", areaID, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
