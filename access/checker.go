package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

// Actor identifies who is performing an operation. Internal users carry a
// UserID; anonymous external users carry only the free-text Info they gave
// on login.
type Actor struct {
	UserID *uuid.UUID
	Info   string
}

// Label returns the identity string recorded on attachments and audit
// entries.
func (a Actor) Label() string {
	if a.UserID != nil {
		return a.UserID.String()
	}
	return a.Info
}

// Checker authorizes attachment operations against one area. Every check
// first validates that the (areaID, listID) combination addresses a known
// attachment list; unsupported combinations fail with
// common.ErrUnsupportedOperation before any rights are evaluated.
//
// The attachment store calls exactly one checker per operation; the HTTP
// layer picks the variant matching the caller's trust context.
type Checker interface {
	CheckSelect(ctx context.Context, areaID uuid.UUID, listID string) error
	CheckUpload(ctx context.Context, areaID uuid.UUID, listID string) error
	CheckDownload(ctx context.Context, areaID uuid.UUID, listID, fileID string) error
	CheckUpdate(ctx context.Context, areaID uuid.UUID, listID, fileID string) error
	CheckDelete(ctx context.Context, areaID uuid.UUID, listID, fileID string) error
}

// EntityRights answers whether an internal user may read or write the
// entity owning an attachment list. Implemented by the surrounding suite's
// permission system; ObserverRights below is the built-in fallback.
type EntityRights interface {
	CanRead(ctx context.Context, userID, areaID uuid.UUID) (bool, error)
	CanWrite(ctx context.Context, userID, areaID uuid.UUID) (bool, error)
}

func validateTarget(ctx context.Context, store areas.Store, areaID uuid.UUID, listID string) (*models.Area, error) {
	area, err := store.Find(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if !area.SupportsList(listID) {
		return nil, fmt.Errorf("list %q of area %s: %w", listID, areaID, common.ErrUnsupportedOperation)
	}
	return area, nil
}
