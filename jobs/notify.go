package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/audit"
	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
	"github.com/micromata/datatransfer-backend/notify"
)

// NotifyJob mails audit entries whose immediate notification failed. The
// notifications-sent flag keeps it from resending what already went out.
type NotifyJob struct {
	audit    audit.Log
	areas    areas.Store
	notifier *notify.Notifier
}

func NewNotifyJob(auditLog audit.Log, areaStore areas.Store, notifier *notify.Notifier) *NotifyJob {
	return &NotifyJob{audit: auditLog, areas: areaStore, notifier: notifier}
}

// Run sends pending notifications and returns how many entries were
// handled. Entries of vanished areas are marked notified without mail so
// they do not pile up forever.
func (j *NotifyJob) Run(ctx context.Context) (int, error) {
	pending, err := j.audit.Unnotified(ctx)
	if err != nil {
		return 0, err
	}

	var done []uuid.UUID
	byArea := make(map[uuid.UUID]*models.Area)
	for _, entry := range pending {
		area, ok := byArea[entry.AreaID]
		if !ok {
			area, err = j.areas.Find(ctx, entry.AreaID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					done = append(done, entry.ID)
					continue
				}
				log.Printf("notify job: loading area %s failed: %v", entry.AreaID, err)
				continue
			}
			byArea[entry.AreaID] = area
		}
		if err := j.notifier.Notify(ctx, area, &entry); err != nil {
			log.Printf("notify job: mailing entry %s failed: %v", entry.ID, err)
			continue
		}
		done = append(done, entry.ID)
	}

	if err := j.audit.MarkNotified(ctx, done); err != nil {
		return len(done), err
	}
	return len(done), nil
}

// StartNotifyJob runs pending-notification delivery once per interval
// until ctx is cancelled.
func StartNotifyJob(ctx context.Context, job *NotifyJob, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := job.Run(ctx); err != nil {
					log.Printf("notify run failed: %v", err)
				}
			}
		}
	}()
}

// StartAuditPurge deletes audit entries older than retention once per day
// until ctx is cancelled. Independent of attachment retention.
func StartAuditPurge(ctx context.Context, auditLog audit.Log, retention time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := auditLog.PurgeOlderThan(ctx, time.Now().Add(-retention))
				if err != nil {
					log.Printf("audit purge failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("audit purge removed %d entries", n)
				}
			}
		}
	}()
}
