package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/storage"
)

// CleanupJob deletes attachments whose owning area has expired them or no
// longer exists. It scans the file repository namespace directly rather
// than enumerating areas, because an area may already be gone while its
// files remain. Deletion bypasses access checks: this job is trusted
// infrastructure, never user-triggered.
type CleanupJob struct {
	repo  storage.FileRepository
	areas areas.Store
	now   func() time.Time
}

func NewCleanupJob(repo storage.FileRepository, areaStore areas.Store) *CleanupJob {
	return &CleanupJob{repo: repo, areas: areaStore, now: time.Now}
}

// Run performs one sweep and returns the number of deleted files. Per-file
// failures are logged and skipped; the sweep never aborts halfway.
func (j *CleanupJob) Run(ctx context.Context) (int, error) {
	all, err := j.areas.All(ctx)
	if err != nil {
		return 0, err
	}
	retention := make(map[uuid.UUID]*int, len(all))
	for _, area := range all {
		retention[area.ID] = area.RetentionDays
	}

	stored, err := j.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	now := j.now()
	deleted := 0
	for _, item := range stored {
		areaID, _, ok := storage.SplitAreaPath(item.Path)
		if !ok {
			continue
		}
		if !j.expired(retention, areaID, item.Attachment.CreatedAt, now) {
			continue
		}
		ok, err := j.repo.Delete(ctx, item.Path, item.Attachment.FileID)
		if err != nil {
			log.Printf("cleanup: deleting %s/%s failed: %v", item.Path, item.Attachment.FileID, err)
			continue
		}
		if ok {
			deleted++
		}
		// !ok means a concurrent delete got there first; not an error
	}
	return deleted, nil
}

func (j *CleanupJob) expired(retention map[uuid.UUID]*int, areaID uuid.UUID, createdAt, now time.Time) bool {
	days, exists := retention[areaID]
	if !exists {
		// owning area is gone; its files go with it
		return true
	}
	if days == nil {
		return false
	}
	return now.Sub(createdAt) > time.Duration(*days)*24*time.Hour
}

// StartCleanupJob runs the sweep once per interval until ctx is cancelled.
func StartCleanupJob(ctx context.Context, job *CleanupJob, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := job.Run(ctx)
				if err != nil {
					log.Printf("cleanup run failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("cleanup removed %d expired attachment(s)", n)
				}
			}
		}
	}()
}
