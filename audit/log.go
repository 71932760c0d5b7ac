package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/models"
)

// Log is the append-only audit trail of attachment events. Entries are
// immutable once appended except for the notifications-sent flag, and leave
// the log only through the age-based purge.
type Log interface {
	Append(ctx context.Context, entry *models.AuditEntry) error

	// ByArea returns all entries of one area, newest first.
	ByArea(ctx context.Context, areaID uuid.UUID) ([]models.AuditEntry, error)

	// Unnotified returns entries whose notifications have not been sent
	// yet, oldest first, so the batch mailer processes them in order.
	Unnotified(ctx context.Context) ([]models.AuditEntry, error)

	// MarkNotified flags the given entries as notified. Idempotent.
	MarkNotified(ctx context.Context, ids []uuid.UUID) error

	// PurgeOlderThan deletes every entry with timestamp strictly before
	// cutoff, regardless of area, and returns the number removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
