package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micromata/datatransfer-backend/models"
)

func appendEntry(t *testing.T, l Log, areaID uuid.UUID, event models.AuditEvent, ts time.Time) *models.AuditEntry {
	t.Helper()
	entry := &models.AuditEntry{AreaID: areaID, Event: event, Timestamp: ts}
	require.NoError(t, l.Append(context.Background(), entry))
	return entry
}

func TestMemoryLog_ByAreaNewestFirst(t *testing.T) {
	l := NewMemoryLog()
	areaID := uuid.New()
	otherArea := uuid.New()
	now := time.Now()

	appendEntry(t, l, areaID, models.EventUpload, now.Add(-2*time.Hour))
	appendEntry(t, l, areaID, models.EventDownload, now.Add(-1*time.Hour))
	appendEntry(t, l, otherArea, models.EventDelete, now)

	entries, err := l.ByArea(context.Background(), areaID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EventDownload, entries[0].Event)
	assert.Equal(t, models.EventUpload, entries[1].Event)
}

func TestMemoryLog_MarkNotifiedIdempotent(t *testing.T) {
	l := NewMemoryLog()
	areaID := uuid.New()
	ctx := context.Background()

	e1 := appendEntry(t, l, areaID, models.EventUpload, time.Now())
	e2 := appendEntry(t, l, areaID, models.EventDelete, time.Now())

	require.NoError(t, l.MarkNotified(ctx, []uuid.UUID{e1.ID}))
	require.NoError(t, l.MarkNotified(ctx, []uuid.UUID{e1.ID})) // resend-safe

	pending, err := l.Unnotified(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, e2.ID, pending[0].ID)
}

func TestMemoryLog_PurgeOlderThan(t *testing.T) {
	l := NewMemoryLog()
	areaID := uuid.New()
	ctx := context.Background()
	cutoff := time.Now()

	appendEntry(t, l, areaID, models.EventUpload, cutoff.Add(-time.Minute))
	appendEntry(t, l, uuid.New(), models.EventUpload, cutoff.Add(-time.Second))
	atCutoff := appendEntry(t, l, areaID, models.EventDownload, cutoff)
	newer := appendEntry(t, l, areaID, models.EventDelete, cutoff.Add(time.Minute))

	purged, err := l.PurgeOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged, "purges strictly-older entries across all areas")

	entries, err := l.ByArea(ctx, areaID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, atCutoff.ID, entries[1].ID)
}
