package storage

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/models"
)

// BasePath is the key prefix owned by the data-transfer subsystem. Nothing
// outside this prefix is ever touched, listed, or deleted.
const BasePath = "datatransfer"

// Stored pairs an attachment with the logical path it lives under; returned
// by the cross-area scan of the retention cleanup job.
type Stored struct {
	Path       string
	Attachment models.Attachment
}

// FileRepository stores attachment content under logical paths of the form
// BasePath/areaId[/listId]. File ids are opaque and assigned on Put.
//
// Get reports common.ErrNotFound for absent files. Delete of an absent file
// returns false without an error. Put fails with common.ErrFileTooLarge when
// the content exceeds sizeLimit (0 means unlimited).
type FileRepository interface {
	Put(ctx context.Context, path string, att models.Attachment, content io.Reader, sizeLimit int64) (*models.Attachment, error)
	Get(ctx context.Context, path, fileID string) (*models.Attachment, io.ReadCloser, error)
	Delete(ctx context.Context, path, fileID string) (bool, error)
	List(ctx context.Context, path string) ([]models.Attachment, error)
	Rename(ctx context.Context, path, fileID string, newName, newDescription *string, updatedBy string) (*models.Attachment, error)

	// ListAll enumerates every attachment under BasePath, across all areas,
	// including files whose owning area no longer exists.
	ListAll(ctx context.Context) ([]Stored, error)
}

// AreaPath builds the logical path for an area's attachment list.
func AreaPath(areaID uuid.UUID, listID string) string {
	if listID == "" {
		return BasePath + "/" + areaID.String()
	}
	return BasePath + "/" + areaID.String() + "/" + listID
}

// SplitAreaPath recovers the area id (and list id, if any) from a logical
// path. Used by the cleanup job to map orphaned files back to their area.
func SplitAreaPath(path string) (areaID uuid.UUID, listID string, ok bool) {
	rest, found := strings.CutPrefix(path, BasePath+"/")
	if !found {
		return uuid.Nil, "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", false
	}
	if len(parts) == 2 {
		listID = parts[1]
	}
	return id, listID, true
}
