package attachments

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/micromata/datatransfer-backend/models"
)

// winzipAES is the compression method id WinZip assigns to AES-encrypted
// entries.
const winzipAES = 99

// IsZipName reports whether a file name looks like a zip archive.
func IsZipName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// DetectZipEncryption inspects a zip archive for password-protected
// entries. Returns EncryptionAES when any entry uses WinZip AES,
// EncryptionZip when any entry sets the classic encryption flag, and
// EncryptionNone otherwise (including for content that is not a readable
// zip at all).
func DetectZipEncryption(data []byte) models.EncryptionMode {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.EncryptionNone
	}
	mode := models.EncryptionNone
	for _, f := range reader.File {
		if f.Method == winzipAES {
			return models.EncryptionAES
		}
		if f.Flags&0x1 != 0 {
			mode = models.EncryptionZip
		}
	}
	return mode
}
