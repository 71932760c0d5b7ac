package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

func TestAreaPath_RoundTrip(t *testing.T) {
	areaID := uuid.New()

	path := AreaPath(areaID, "")
	gotArea, gotList, ok := SplitAreaPath(path)
	require.True(t, ok)
	assert.Equal(t, areaID, gotArea)
	assert.Empty(t, gotList)

	path = AreaPath(areaID, "drafts")
	gotArea, gotList, ok = SplitAreaPath(path)
	require.True(t, ok)
	assert.Equal(t, areaID, gotArea)
	assert.Equal(t, "drafts", gotList)
}

func TestSplitAreaPath_RejectsForeignKeys(t *testing.T) {
	for _, path := range []string{
		"uploads/" + uuid.New().String(),
		BasePath + "/not-a-uuid",
		"",
	} {
		_, _, ok := SplitAreaPath(path)
		assert.False(t, ok, "path %q must not map to an area", path)
	}
}

func TestMemoryRepository_PutAssignsIdentityAndChecksum(t *testing.T) {
	repo := NewMemoryRepository()
	path := AreaPath(uuid.New(), "")

	stored, err := repo.Put(context.Background(), path, models.Attachment{Name: "a.txt"}, strings.NewReader("hello"), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.FileID)
	assert.NotEmpty(t, stored.Checksum)
	assert.Equal(t, int64(5), stored.SizeBytes)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, path, stored.Location)
}

func TestMemoryRepository_GetAbsentIsNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	_, _, err := repo.Get(context.Background(), AreaPath(uuid.New(), ""), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_ListIsolatesPaths(t *testing.T) {
	repo := NewMemoryRepository()
	areaID := uuid.New()
	ctx := context.Background()

	older := models.Attachment{Name: "older.txt", CreatedAt: time.Now().Add(-time.Hour)}
	_, err := repo.Put(ctx, AreaPath(areaID, ""), older, strings.NewReader("1"), 0)
	require.NoError(t, err)
	newer := models.Attachment{Name: "newer.txt", CreatedAt: time.Now()}
	_, err = repo.Put(ctx, AreaPath(areaID, ""), newer, strings.NewReader("2"), 0)
	require.NoError(t, err)
	_, err = repo.Put(ctx, AreaPath(areaID, "drafts"), models.Attachment{Name: "draft.txt"}, strings.NewReader("3"), 0)
	require.NoError(t, err)

	atts, err := repo.List(ctx, AreaPath(areaID, ""))
	require.NoError(t, err)
	require.Len(t, atts, 2)
	assert.Equal(t, "newer.txt", atts[0].Name)
	assert.Equal(t, "older.txt", atts[1].Name)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryRepository_GetReturnsContent(t *testing.T) {
	repo := NewMemoryRepository()
	path := AreaPath(uuid.New(), "")
	ctx := context.Background()

	stored, err := repo.Put(ctx, path, models.Attachment{Name: "a.txt"}, strings.NewReader("payload"), 0)
	require.NoError(t, err)

	att, rc, err := repo.Get(ctx, path, stored.FileID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "a.txt", att.Name)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}
