package models

import "time"

// EncryptionMode records how an uploaded file is protected at rest.
type EncryptionMode string

const (
	EncryptionNone EncryptionMode = ""
	EncryptionZip  EncryptionMode = "zip"
	EncryptionAES  EncryptionMode = "aes"
)

// Attachment is the metadata view of one stored file. The binary content
// lives in the file repository; name and description are the only mutable
// fields after upload.
type Attachment struct {
	FileID        string         `json:"fileId"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	SizeBytes     int64          `json:"sizeBytes"`
	Checksum      string         `json:"checksum,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	CreatedBy     string         `json:"createdBy,omitempty"`
	LastUpdatedAt time.Time      `json:"lastUpdatedAt,omitempty"`
	LastUpdatedBy string         `json:"lastUpdatedBy,omitempty"`
	Encryption    EncryptionMode `json:"encryption,omitempty"`
	Location      string         `json:"location,omitempty"`
}
