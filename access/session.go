package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/common"
)

// SessionChecker authorizes anonymous external users. The session already
// proved knowledge of the area's token and password, so select always
// passes; everything else derives from the area's external flags plus
// whether this browser session uploaded the file itself.
type SessionChecker struct {
	store areas.Store
	owns  func(fileID string) bool
}

func NewSessionChecker(store areas.Store, owns func(fileID string) bool) *SessionChecker {
	if owns == nil {
		owns = func(string) bool { return false }
	}
	return &SessionChecker{store: store, owns: owns}
}

func (c *SessionChecker) CheckSelect(ctx context.Context, areaID uuid.UUID, listID string) error {
	_, err := validateTarget(ctx, c.store, areaID, listID)
	return err
}

func (c *SessionChecker) CheckUpload(ctx context.Context, areaID uuid.UUID, listID string) error {
	area, err := validateTarget(ctx, c.store, areaID, listID)
	if err != nil {
		return err
	}
	if !area.ExternalUpload {
		return common.ErrAccessDenied
	}
	return nil
}

func (c *SessionChecker) CheckDownload(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	area, err := validateTarget(ctx, c.store, areaID, listID)
	if err != nil {
		return err
	}
	if area.ExternalDownload || c.owns(fileID) {
		return nil
	}
	return common.ErrAccessDenied
}

func (c *SessionChecker) CheckUpdate(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	area, err := validateTarget(ctx, c.store, areaID, listID)
	if err != nil {
		return err
	}
	if area.ExternalUpload && c.owns(fileID) {
		return nil
	}
	return common.ErrAccessDenied
}

func (c *SessionChecker) CheckDelete(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return c.CheckUpdate(ctx, areaID, listID, fileID)
}
