package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
)

const (
	metaName        = "dt-name"
	metaDescription = "dt-description"
	metaCreatedAt   = "dt-created-at"
	metaCreatedBy   = "dt-created-by"
	metaUpdatedAt   = "dt-updated-at"
	metaUpdatedBy   = "dt-updated-by"
	metaEncryption  = "dt-encryption"
)

// S3Repository is the production FileRepository backed by an S3 bucket.
// Attachment metadata rides along as object metadata, so the bucket is the
// single source of truth and no relational row has to exist for a file.
type S3Repository struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

func NewS3Repository(client *s3.Client, bucket string) *S3Repository {
	return &S3Repository{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}
}

func (r *S3Repository) Put(ctx context.Context, path string, att models.Attachment, content io.Reader, sizeLimit int64) (*models.Attachment, error) {
	if att.FileID == "" {
		att.FileID = uuid.New().String()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now()
	}
	att.Location = path

	body := content
	var counter *countingReader
	if sizeLimit > 0 {
		counter = &countingReader{r: content, limit: sizeLimit}
		body = counter
	}

	_, err := r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(r.bucket),
		Key:      aws.String(path + "/" + att.FileID),
		Body:     body,
		Metadata: metadataOf(att),
	})
	if err != nil {
		if counter != nil && counter.exceeded {
			// the upload aborts once the limit trips; drop the partial object
			_, _ = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(r.bucket),
				Key:    aws.String(path + "/" + att.FileID),
			})
			return nil, common.ErrFileTooLarge
		}
		return nil, fmt.Errorf("s3 put %s: %w", path, err)
	}
	if counter != nil {
		att.SizeBytes = counter.n
	}

	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path + "/" + att.FileID),
	})
	if err == nil {
		att.SizeBytes = aws.ToInt64(head.ContentLength)
		att.Checksum = strings.Trim(aws.ToString(head.ETag), `"`)
	}
	return &att, nil
}

func (r *S3Repository) Get(ctx context.Context, path, fileID string) (*models.Attachment, io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path + "/" + fileID),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil, common.ErrNotFound
		}
		return nil, nil, fmt.Errorf("s3 get %s/%s: %w", path, fileID, err)
	}
	att := attachmentFromMeta(fileID, path, out.Metadata, aws.ToInt64(out.ContentLength), strings.Trim(aws.ToString(out.ETag), `"`))
	return &att, out.Body, nil
}

func (r *S3Repository) Delete(ctx context.Context, path, fileID string) (bool, error) {
	key := path + "/" + fileID
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s: %w", key, err)
	}
	if _, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return false, fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return true, nil
}

func (r *S3Repository) List(ctx context.Context, path string) ([]models.Attachment, error) {
	atts := []models.Attachment{}
	prefix := path + "/"
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", path, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			fileID := strings.TrimPrefix(key, prefix)
			if fileID == "" || strings.Contains(fileID, "/") {
				continue // belongs to a nested list
			}
			head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(r.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				continue
			}
			atts = append(atts, attachmentFromMeta(fileID, path, head.Metadata,
				aws.ToInt64(head.ContentLength), strings.Trim(aws.ToString(head.ETag), `"`)))
		}
	}
	sortNewestFirst(atts)
	return atts, nil
}

func (r *S3Repository) Rename(ctx context.Context, path, fileID string, newName, newDescription *string, updatedBy string) (*models.Attachment, error) {
	key := path + "/" + fileID
	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("s3 head %s: %w", key, err)
	}

	att := attachmentFromMeta(fileID, path, head.Metadata, aws.ToInt64(head.ContentLength), strings.Trim(aws.ToString(head.ETag), `"`))
	if newName != nil {
		att.Name = *newName
	}
	if newDescription != nil {
		att.Description = *newDescription
	}
	att.LastUpdatedAt = time.Now()
	att.LastUpdatedBy = updatedBy

	_, err = r.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(r.bucket),
		CopySource:        aws.String(r.bucket + "/" + key),
		Key:               aws.String(key),
		Metadata:          metadataOf(att),
		MetadataDirective: types.MetadataDirectiveReplace,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 rename %s: %w", key, err)
	}
	return &att, nil
}

func (r *S3Repository) ListAll(ctx context.Context) ([]Stored, error) {
	var stored []Stored
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(BasePath + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list all: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			idx := strings.LastIndex(key, "/")
			if idx < 0 {
				continue
			}
			path, fileID := key[:idx], key[idx+1:]
			head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(r.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				continue
			}
			stored = append(stored, Stored{
				Path: path,
				Attachment: attachmentFromMeta(fileID, path, head.Metadata,
					aws.ToInt64(head.ContentLength), strings.Trim(aws.ToString(head.ETag), `"`)),
			})
		}
	}
	return stored, nil
}

func metadataOf(att models.Attachment) map[string]string {
	m := map[string]string{
		metaName:      att.Name,
		metaCreatedAt: att.CreatedAt.Format(time.RFC3339Nano),
		metaCreatedBy: att.CreatedBy,
	}
	if att.Description != "" {
		m[metaDescription] = att.Description
	}
	if !att.LastUpdatedAt.IsZero() {
		m[metaUpdatedAt] = att.LastUpdatedAt.Format(time.RFC3339Nano)
	}
	if att.LastUpdatedBy != "" {
		m[metaUpdatedBy] = att.LastUpdatedBy
	}
	if att.Encryption != models.EncryptionNone {
		m[metaEncryption] = string(att.Encryption)
	}
	return m
}

func attachmentFromMeta(fileID, path string, meta map[string]string, size int64, checksum string) models.Attachment {
	att := models.Attachment{
		FileID:      fileID,
		Name:        meta[metaName],
		Description: meta[metaDescription],
		SizeBytes:   size,
		Checksum:    checksum,
		CreatedBy:   meta[metaCreatedBy],
		Encryption:  models.EncryptionMode(meta[metaEncryption]),
		Location:    path,
	}
	if t, err := time.Parse(time.RFC3339Nano, meta[metaCreatedAt]); err == nil {
		att.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, meta[metaUpdatedAt]); err == nil {
		att.LastUpdatedAt = t
	}
	att.LastUpdatedBy = meta[metaUpdatedBy]
	return att
}

func sortNewestFirst(atts []models.Attachment) {
	sort.SliceStable(atts, func(i, j int) bool {
		return atts[i].CreatedAt.After(atts[j].CreatedAt)
	})
}

func isNoSuchKey(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

// countingReader enforces an upload size limit while streaming to S3.
type countingReader struct {
	r        io.Reader
	n        int64
	limit    int64
	exceeded bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.n > c.limit {
		c.exceeded = true
		return n, fmt.Errorf("size limit of %s exceeded: %w",
			strconv.FormatInt(c.limit, 10), common.ErrFileTooLarge)
	}
	return n, err
}
