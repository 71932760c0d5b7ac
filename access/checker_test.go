package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

func newTestArea(t *testing.T, store *areas.MemoryStore, download, upload bool) *models.Area {
	t.Helper()
	area := &models.Area{
		Name:             "project files",
		ExternalDownload: download,
		ExternalUpload:   upload,
		ListIDs:          models.StringList{"invoices"},
	}
	store.Put(area)
	return area
}

func TestSessionChecker_DownloadRequiresFlagOrOwnership(t *testing.T) {
	store := areas.NewMemoryStore()
	area := newTestArea(t, store, false, true)
	ctx := context.Background()

	owned := map[string]bool{"file-own": true}
	checker := NewSessionChecker(store, func(id string) bool { return owned[id] })

	require.NoError(t, checker.CheckSelect(ctx, area.ID, ""))
	assert.NoError(t, checker.CheckDownload(ctx, area.ID, "", "file-own"))
	assert.ErrorIs(t, checker.CheckDownload(ctx, area.ID, "", "file-other"), common.ErrAccessDenied)
}

func TestSessionChecker_DownloadFlagOpensEverything(t *testing.T) {
	store := areas.NewMemoryStore()
	area := newTestArea(t, store, true, false)
	checker := NewSessionChecker(store, nil)

	assert.NoError(t, checker.CheckDownload(context.Background(), area.ID, "", "any-file"))
}

func TestSessionChecker_WriteRequiresUploadFlagAndOwnership(t *testing.T) {
	store := areas.NewMemoryStore()
	ctx := context.Background()

	withUpload := newTestArea(t, store, false, true)
	noUpload := newTestArea(t, store, false, false)

	checker := NewSessionChecker(store, func(id string) bool { return id == "mine" })

	assert.NoError(t, checker.CheckUpload(ctx, withUpload.ID, ""))
	assert.ErrorIs(t, checker.CheckUpload(ctx, noUpload.ID, ""), common.ErrAccessDenied)

	assert.NoError(t, checker.CheckUpdate(ctx, withUpload.ID, "", "mine"))
	assert.ErrorIs(t, checker.CheckUpdate(ctx, withUpload.ID, "", "theirs"), common.ErrAccessDenied)
	assert.ErrorIs(t, checker.CheckDelete(ctx, noUpload.ID, "", "mine"), common.ErrAccessDenied)
}

func TestCheckers_UnknownListIsUnsupported(t *testing.T) {
	store := areas.NewMemoryStore()
	area := newTestArea(t, store, true, true)
	ctx := context.Background()

	session := NewSessionChecker(store, nil)
	assert.NoError(t, session.CheckSelect(ctx, area.ID, "invoices"))
	assert.ErrorIs(t, session.CheckSelect(ctx, area.ID, "no-such-list"), common.ErrUnsupportedOperation)
	assert.ErrorIs(t, session.CheckUpload(ctx, area.ID, "no-such-list"), common.ErrUnsupportedOperation)

	userID := uuid.New()
	entity := NewEntityChecker(store, NewObserverRights(store), userID)
	assert.ErrorIs(t, entity.CheckSelect(ctx, area.ID, "no-such-list"), common.ErrUnsupportedOperation)
}

func TestEntityChecker_ObserverRights(t *testing.T) {
	store := areas.NewMemoryStore()
	observer := uuid.New()
	outsider := uuid.New()
	area := &models.Area{Name: "board", ObserverIDs: models.UUIDSet{observer}}
	store.Put(area)
	ctx := context.Background()

	rights := NewObserverRights(store)

	allowed := NewEntityChecker(store, rights, observer)
	assert.NoError(t, allowed.CheckSelect(ctx, area.ID, ""))
	assert.NoError(t, allowed.CheckUpload(ctx, area.ID, ""))
	assert.NoError(t, allowed.CheckDelete(ctx, area.ID, "", "f1"))

	denied := NewEntityChecker(store, rights, outsider)
	assert.ErrorIs(t, denied.CheckSelect(ctx, area.ID, ""), common.ErrAccessDenied)
	assert.ErrorIs(t, denied.CheckDownload(ctx, area.ID, "", "f1"), common.ErrAccessDenied)
}

func TestDenyAllChecker(t *testing.T) {
	store := areas.NewMemoryStore()
	area := newTestArea(t, store, true, true)
	ctx := context.Background()

	checker := NewDenyAllChecker(store)
	assert.NoError(t, checker.CheckSelect(ctx, area.ID, ""))
	assert.ErrorIs(t, checker.CheckDownload(ctx, area.ID, "", "f1"), common.ErrAccessDenied)
	assert.ErrorIs(t, checker.CheckUpload(ctx, area.ID, ""), common.ErrAccessDenied)
	assert.ErrorIs(t, checker.CheckUpdate(ctx, area.ID, "", "f1"), common.ErrAccessDenied)
	assert.ErrorIs(t, checker.CheckDelete(ctx, area.ID, "", "f1"), common.ErrAccessDenied)
}

func TestMissingAreaIsNotFound(t *testing.T) {
	store := areas.NewMemoryStore()
	checker := NewSessionChecker(store, nil)
	err := checker.CheckSelect(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
