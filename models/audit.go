package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEvent classifies one attachment event.
type AuditEvent string

const (
	EventUpload        AuditEvent = "UPLOAD"
	EventDownload      AuditEvent = "DOWNLOAD"
	EventDownloadMulti AuditEvent = "DOWNLOAD_MULTI"
	EventDownloadAll   AuditEvent = "DOWNLOAD_ALL"
	EventDelete        AuditEvent = "DELETE"
	EventModification  AuditEvent = "MODIFICATION"
)

// AuditEntry is one append-only record of an attachment event. Only the
// NotificationsSent flag is mutable after creation; entries are removed by
// the age-based purge alone.
type AuditEntry struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AreaID uuid.UUID  `gorm:"type:uuid;index" json:"areaId"`
	Event  AuditEvent `gorm:"index" json:"event"`

	// ActingUserID is nil for external actors; ActingUserInfo then carries
	// the free-text identity the anonymous session supplied on login.
	ActingUserID   *uuid.UUID `gorm:"type:uuid" json:"actingUserId,omitempty"`
	ActingUserInfo string     `json:"actingUserInfo,omitempty"`

	// UploadOwnerID is the internal user who originally uploaded the
	// affected file, when known.
	UploadOwnerID *uuid.UUID `gorm:"type:uuid" json:"uploadOwnerId,omitempty"`

	FileID   string `json:"fileId,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`

	NotificationsSent bool      `gorm:"index" json:"notificationsSent"`
	Timestamp         time.Time `gorm:"index" json:"timestamp"`
}

func (e *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return nil
}
