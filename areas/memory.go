package areas

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

// MemoryStore keeps areas in process memory; used by tests and local
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	areas map[uuid.UUID]*models.Area
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{areas: make(map[uuid.UUID]*models.Area)}
}

// Put inserts or replaces an area. Not part of the Store contract: area
// provisioning belongs to the surrounding suite.
func (s *MemoryStore) Put(area *models.Area) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	s.areas[area.ID] = area
}

// Remove drops an area, leaving any attachments it owned orphaned.
func (s *MemoryStore) Remove(areaID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.areas, areaID)
}

func (s *MemoryStore) Find(ctx context.Context, areaID uuid.UUID) (*models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	area, ok := s.areas[areaID]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *area
	return &copied, nil
}

func (s *MemoryStore) FindByToken(ctx context.Context, token string) (*models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, area := range s.areas {
		if area.ExternalAccessToken == token {
			copied := *area
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *MemoryStore) All(ctx context.Context) ([]models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.Area, 0, len(s.areas))
	for _, area := range s.areas {
		list = append(list, *area)
	}
	return list, nil
}

func (s *MemoryStore) UpdateIndexFields(ctx context.Context, areaID uuid.UUID, names, fileIDs string, counter int, totalSize int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	area, ok := s.areas[areaID]
	if !ok {
		return common.ErrNotFound
	}
	area.AttachmentNames = names
	area.AttachmentFileIDs = fileIDs
	area.AttachmentCounter = counter
	area.AttachmentsSize = totalSize
	return nil
}
