package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micromata/datatransfer-backend/models"
	"github.com/micromata/datatransfer-backend/storage"
)

func setupExport(t *testing.T) (*ZipExporter, *storage.MemoryRepository, uuid.UUID, []models.Attachment) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	areaID := uuid.New()
	path := storage.AreaPath(areaID, "")
	ctx := context.Background()

	var atts []models.Attachment
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		stored, err := repo.Put(ctx, path, models.Attachment{Name: name}, strings.NewReader("content of "+name), 0)
		require.NoError(t, err)
		atts = append(atts, *stored)
	}
	return NewZipExporter(repo), repo, areaID, atts
}

func readZipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestWriteZip_AllFiles(t *testing.T) {
	exporter, _, areaID, atts := setupExport(t)

	var buf bytes.Buffer
	written, err := exporter.WriteZip(context.Background(), &buf, areaID, "", atts)
	require.NoError(t, err)
	assert.Equal(t, 3, written)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt"}, readZipNames(t, buf.Bytes()))
}

func TestWriteZip_SkipsUnretrievableFiles(t *testing.T) {
	exporter, repo, areaID, atts := setupExport(t)

	// b.txt vanishes between listing and export
	_, err := repo.Delete(context.Background(), storage.AreaPath(areaID, ""), atts[1].FileID)
	require.NoError(t, err)

	var buf bytes.Buffer
	written, err := exporter.WriteZip(context.Background(), &buf, areaID, "", atts)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.ElementsMatch(t, []string{"a.txt", "c.txt"}, readZipNames(t, buf.Bytes()))
}

func TestWriteZip_ContentSurvivesRoundTrip(t *testing.T) {
	exporter, _, areaID, atts := setupExport(t)

	var buf bytes.Buffer
	_, err := exporter.WriteZip(context.Background(), &buf, areaID, "", atts[:1])
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "content of a.txt", string(content))
}

func TestWriteZip_StopsOnCancellation(t *testing.T) {
	exporter, _, areaID, atts := setupExport(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	written, err := exporter.WriteZip(ctx, &buf, areaID, "", atts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, written)
}
