package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

// MemoryRepository keeps attachments in process memory. Used by tests and by
// local development without an S3 bucket. Writes are serialized per
// repository, which satisfies the per-key write ordering the store relies on.
type MemoryRepository struct {
	mu    sync.Mutex
	files map[string]map[string]*memoryFile // path -> fileID -> file
}

type memoryFile struct {
	att  models.Attachment
	data []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{files: make(map[string]map[string]*memoryFile)}
}

func (r *MemoryRepository) Put(ctx context.Context, path string, att models.Attachment, content io.Reader, sizeLimit int64) (*models.Attachment, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	if sizeLimit > 0 && int64(len(data)) > sizeLimit {
		return nil, common.ErrFileTooLarge
	}

	if att.FileID == "" {
		att.FileID = uuid.New().String()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now()
	}
	att.SizeBytes = int64(len(data))
	sum := sha256.Sum256(data)
	att.Checksum = hex.EncodeToString(sum[:])
	att.Location = path

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.files[path] == nil {
		r.files[path] = make(map[string]*memoryFile)
	}
	r.files[path][att.FileID] = &memoryFile{att: att, data: data}
	stored := att
	return &stored, nil
}

func (r *MemoryRepository) Get(ctx context.Context, path, fileID string) (*models.Attachment, io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[path][fileID]
	if !ok {
		return nil, nil, common.ErrNotFound
	}
	att := f.att
	return &att, io.NopCloser(bytes.NewReader(f.data)), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, path, fileID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[path][fileID]; !ok {
		return false, nil
	}
	delete(r.files[path], fileID)
	return true, nil
}

func (r *MemoryRepository) List(ctx context.Context, path string) ([]models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	atts := []models.Attachment{}
	for _, f := range r.files[path] {
		atts = append(atts, f.att)
	}
	sortNewestFirst(atts)
	return atts, nil
}

func (r *MemoryRepository) Rename(ctx context.Context, path, fileID string, newName, newDescription *string, updatedBy string) (*models.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[path][fileID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if newName != nil {
		f.att.Name = *newName
	}
	if newDescription != nil {
		f.att.Description = *newDescription
	}
	f.att.LastUpdatedAt = time.Now()
	f.att.LastUpdatedBy = updatedBy
	att := f.att
	return &att, nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]Stored, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stored []Stored
	for path, byID := range r.files {
		for _, f := range byID {
			stored = append(stored, Stored{Path: path, Attachment: f.att})
		}
	}
	return stored, nil
}
