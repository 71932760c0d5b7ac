package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/common"
)

// EntityChecker authorizes internal users by the rights they hold on the
// owning entity: read access covers select and download, write access
// covers upload, update, and delete.
type EntityChecker struct {
	store  areas.Store
	rights EntityRights
	userID uuid.UUID
}

func NewEntityChecker(store areas.Store, rights EntityRights, userID uuid.UUID) *EntityChecker {
	return &EntityChecker{store: store, rights: rights, userID: userID}
}

func (c *EntityChecker) checkRead(ctx context.Context, areaID uuid.UUID, listID string) error {
	if _, err := validateTarget(ctx, c.store, areaID, listID); err != nil {
		return err
	}
	ok, err := c.rights.CanRead(ctx, c.userID, areaID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrAccessDenied
	}
	return nil
}

func (c *EntityChecker) checkWrite(ctx context.Context, areaID uuid.UUID, listID string) error {
	if _, err := validateTarget(ctx, c.store, areaID, listID); err != nil {
		return err
	}
	ok, err := c.rights.CanWrite(ctx, c.userID, areaID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrAccessDenied
	}
	return nil
}

func (c *EntityChecker) CheckSelect(ctx context.Context, areaID uuid.UUID, listID string) error {
	return c.checkRead(ctx, areaID, listID)
}

func (c *EntityChecker) CheckUpload(ctx context.Context, areaID uuid.UUID, listID string) error {
	return c.checkWrite(ctx, areaID, listID)
}

func (c *EntityChecker) CheckDownload(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return c.checkRead(ctx, areaID, listID)
}

func (c *EntityChecker) CheckUpdate(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return c.checkWrite(ctx, areaID, listID)
}

func (c *EntityChecker) CheckDelete(ctx context.Context, areaID uuid.UUID, listID, fileID string) error {
	return c.checkWrite(ctx, areaID, listID)
}

// ObserverRights is the built-in EntityRights implementation: users listed
// as observers of an area may read and write it. Deployments with a richer
// permission model plug in their own EntityRights.
type ObserverRights struct {
	store areas.Store
}

func NewObserverRights(store areas.Store) *ObserverRights {
	return &ObserverRights{store: store}
}

func (r *ObserverRights) CanRead(ctx context.Context, userID, areaID uuid.UUID) (bool, error) {
	area, err := r.store.Find(ctx, areaID)
	if err != nil {
		return false, err
	}
	return area.ObserverIDs.Contains(userID), nil
}

func (r *ObserverRights) CanWrite(ctx context.Context, userID, areaID uuid.UUID) (bool, error) {
	return r.CanRead(ctx, userID, areaID)
}
