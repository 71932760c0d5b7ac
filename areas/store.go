package areas

import (
	"context"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/micromata/datatransfer-backend/models"
)

// Store is the subsystem's view of area metadata. Areas are provisioned and
// deleted by the surrounding suite; everything here except UpdateIndexFields
// is read-only.
//
// Find and FindByToken report common.ErrNotFound for absent areas.
type Store interface {
	Find(ctx context.Context, areaID uuid.UUID) (*models.Area, error)
	FindByToken(ctx context.Context, token string) (*models.Area, error)
	All(ctx context.Context) ([]models.Area, error)

	// UpdateIndexFields writes the roll-up columns the suite's search index
	// reads. Callers treat failures as log-and-continue.
	UpdateIndexFields(ctx context.Context, areaID uuid.UUID, names, fileIDs string, counter int, totalSize int64) error
}

// HashPassword hashes an external access password for storage on an area.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a login attempt against the stored area hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewAccessToken mints an external access token for a freshly provisioned
// area. Short and URL-safe so it survives being pasted into mails.
func NewAccessToken() string {
	return shortuuid.New()
}
