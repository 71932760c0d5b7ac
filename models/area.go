package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDSet is a set of user ids stored as a JSON column.
type UUIDSet []uuid.UUID

func (s UUIDSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *UUIDSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type %T for UUIDSet", value)
	}
}

func (s UUIDSet) Contains(id uuid.UUID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// StringList is a list of list ids stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Area is the addressable container of attachments. Areas are provisioned
// and deleted by the surrounding suite; this subsystem only reads them and
// writes the roll-up index columns.
type Area struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string     `json:"name"`
	RetentionDays       *int       `json:"retentionDays,omitempty"`
	ExternalAccessToken string     `gorm:"uniqueIndex" json:"-"`
	ExternalPassword    string     `gorm:"column:external_password_hash" json:"-"`
	ExternalDownload    bool       `json:"externalDownloadEnabled"`
	ExternalUpload      bool       `json:"externalUploadEnabled"`
	ObserverIDs         UUIDSet    `gorm:"type:text" json:"observerIds,omitempty"`
	ListIDs             StringList `gorm:"type:text" json:"listIds,omitempty"`

	// roll-up index columns, maintained as a best-effort side effect of
	// every attachment mutation
	AttachmentNames   string `json:"-"`
	AttachmentFileIDs string `json:"-"`
	AttachmentCounter int    `json:"attachmentCounter"`
	AttachmentsSize   int64  `json:"attachmentsSize"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Area) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// SupportsList reports whether listID addresses a known attachment list of
// this area. The empty list id is the area's default list and always valid.
func (a *Area) SupportsList(listID string) bool {
	if listID == "" {
		return true
	}
	return a.ListIDs.Contains(listID)
}
