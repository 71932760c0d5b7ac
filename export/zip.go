package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/models"
	"github.com/micromata/datatransfer-backend/storage"
)

// ZipExporter streams a filtered subset of an area's attachments as a
// single zip archive. It reads through the file repository with no access
// check of its own; the call sites (download-all, multi-download,
// download-own) apply their filters before handing over the attachment
// list.
type ZipExporter struct {
	repo storage.FileRepository
}

func NewZipExporter(repo storage.FileRepository) *ZipExporter {
	return &ZipExporter{repo: repo}
}

// WriteZip writes one entry per retrievable attachment to w. A file that
// cannot be retrieved is skipped and logged; partial archives are
// acceptable. The export stops between entries once ctx is cancelled,
// which is how a caller closing the response stream aborts it. Returns the
// number of entries written.
func (e *ZipExporter) WriteZip(ctx context.Context, w io.Writer, areaID uuid.UUID, listID string, atts []models.Attachment) (int, error) {
	zw := zip.NewWriter(w)
	path := storage.AreaPath(areaID, listID)

	written := 0
	for _, att := range atts {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return written, err
		}
		if err := e.writeEntry(ctx, zw, path, att); err != nil {
			log.Printf("zip export: skipping %q (%s): %v", att.Name, att.FileID, err)
			continue
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("finishing zip: %w", err)
	}
	return written, nil
}

func (e *ZipExporter) writeEntry(ctx context.Context, zw *zip.Writer, path string, att models.Attachment) error {
	meta, content, err := e.repo.Get(ctx, path, att.FileID)
	if err != nil {
		return err
	}
	defer content.Close()

	header := &zip.FileHeader{
		Name:     att.Name,
		Method:   zip.Deflate,
		Modified: meta.CreatedAt,
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, content)
	return err
}
