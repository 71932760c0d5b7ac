package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/audit"
	"github.com/micromata/datatransfer-backend/models"
	"github.com/micromata/datatransfer-backend/notify"
)

type recordingSender struct {
	sent []string
	fail bool
}

func (s *recordingSender) Send(ctx context.Context, recipients []uuid.UUID, subject, body string) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, subject)
	return nil
}

func pendingEntry(t *testing.T, l audit.Log, areaID uuid.UUID, actor *uuid.UUID, fileName string) *models.AuditEntry {
	t.Helper()
	entry := &models.AuditEntry{
		AreaID:       areaID,
		Event:        models.EventUpload,
		ActingUserID: actor,
		FileName:     fileName,
		Timestamp:    time.Now(),
	}
	require.NoError(t, l.Append(context.Background(), entry))
	return entry
}

func TestNotifyJob_DeliversAndMarksPending(t *testing.T) {
	auditLog := audit.NewMemoryLog()
	areaStore := areas.NewMemoryStore()
	observer := uuid.New()
	area := &models.Area{Name: "drop", ObserverIDs: models.UUIDSet{observer}}
	areaStore.Put(area)

	actor := uuid.New()
	pendingEntry(t, auditLog, area.ID, &actor, "a.txt")
	pendingEntry(t, auditLog, area.ID, &actor, "b.txt")

	sender := &recordingSender{}
	job := NewNotifyJob(auditLog, areaStore, notify.NewNotifier(sender))

	handled, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, handled)
	assert.Len(t, sender.sent, 2)

	pending, err := auditLog.Unnotified(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNotifyJob_VanishedAreaMarkedWithoutMail(t *testing.T) {
	auditLog := audit.NewMemoryLog()
	areaStore := areas.NewMemoryStore()

	actor := uuid.New()
	pendingEntry(t, auditLog, uuid.New(), &actor, "orphan.txt")

	sender := &recordingSender{}
	job := NewNotifyJob(auditLog, areaStore, notify.NewNotifier(sender))

	handled, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	assert.Empty(t, sender.sent)

	pending, err := auditLog.Unnotified(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNotifyJob_FailedSendStaysPending(t *testing.T) {
	auditLog := audit.NewMemoryLog()
	areaStore := areas.NewMemoryStore()
	observer := uuid.New()
	area := &models.Area{Name: "drop", ObserverIDs: models.UUIDSet{observer}}
	areaStore.Put(area)

	actor := uuid.New()
	pendingEntry(t, auditLog, area.ID, &actor, "a.txt")

	sender := &recordingSender{fail: true}
	job := NewNotifyJob(auditLog, areaStore, notify.NewNotifier(sender))

	handled, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, handled)

	pending, err := auditLog.Unnotified(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1, "entry stays pending for the next run")

	sender.fail = false
	handled, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
}
