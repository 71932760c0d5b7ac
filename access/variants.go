package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/common"
)

// DenyAllChecker permits select only. It is the fail-closed default for
// external contexts before an area's flags have been evaluated.
type DenyAllChecker struct {
	store areas.Store
}

func NewDenyAllChecker(store areas.Store) *DenyAllChecker {
	return &DenyAllChecker{store: store}
}

func (c *DenyAllChecker) CheckSelect(ctx context.Context, areaID uuid.UUID, listID string) error {
	_, err := validateTarget(ctx, c.store, areaID, listID)
	return err
}

func (c *DenyAllChecker) CheckUpload(ctx context.Context, areaID uuid.UUID, listID string) error {
	return common.ErrAccessDenied
}

func (c *DenyAllChecker) CheckDownload(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return common.ErrAccessDenied
}

func (c *DenyAllChecker) CheckUpdate(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return common.ErrAccessDenied
}

func (c *DenyAllChecker) CheckDelete(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return common.ErrAccessDenied
}

// InternalChecker allows everything. It backs the retention cleanup job and
// index maintenance and must never be reachable from a network handler.
type InternalChecker struct{}

func (InternalChecker) CheckSelect(ctx context.Context, areaID uuid.UUID, listID string) error {
	return nil
}

func (InternalChecker) CheckUpload(ctx context.Context, areaID uuid.UUID, listID string) error {
	return nil
}

func (InternalChecker) CheckDownload(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return nil
}

func (InternalChecker) CheckUpdate(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return nil
}

func (InternalChecker) CheckDelete(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return nil
}
