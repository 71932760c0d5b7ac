package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/access"
	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/audit"
	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/models"
	"github.com/micromata/datatransfer-backend/notify"
	"github.com/micromata/datatransfer-backend/storage"
)

// Store is the single entry point for attachment operations. Every public
// operation consults the caller's AccessChecker before touching the file
// repository; successful mutations append to the audit log, refresh the
// owning area's index columns, and trigger notifications. The side effects
// are best-effort: once the repository mutation committed, their failure is
// logged and never rolls back or fails the primary operation.
type Store struct {
	repo     storage.FileRepository
	areas    areas.Store
	audit    audit.Log
	notifier *notify.Notifier

	// maxFileSize bounds a single upload; 0 means unlimited.
	maxFileSize int64
}

func NewStore(repo storage.FileRepository, areaStore areas.Store, auditLog audit.Log, notifier *notify.Notifier, maxFileSize int64) *Store {
	return &Store{
		repo:        repo,
		areas:       areaStore,
		audit:       auditLog,
		notifier:    notifier,
		maxFileSize: maxFileSize,
	}
}

// List returns the attachments of one list, newest first. The result is
// never nil: an empty slice means the list exists but holds no files, which
// callers rely on to distinguish "just deleted the last file" from "never
// loaded".
func (s *Store) List(ctx context.Context, checker access.Checker, areaID uuid.UUID, listID string) ([]models.Attachment, error) {
	if err := checker.CheckSelect(ctx, areaID, listID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, storage.AreaPath(areaID, listID))
}

// Upload stores a new attachment. With allowDuplicates false, an existing
// attachment of the same name in the target list rejects the upload. Zip
// uploads without a declared encryption mode are peeked at to record
// whether they are password protected.
func (s *Store) Upload(ctx context.Context, checker access.Checker, actor access.Actor, areaID uuid.UUID, listID string, att models.Attachment, content io.Reader, allowDuplicates bool) (*models.Attachment, error) {
	if err := checker.CheckUpload(ctx, areaID, listID); err != nil {
		return nil, err
	}
	path := storage.AreaPath(areaID, listID)

	if !allowDuplicates {
		existing, err := s.repo.List(ctx, path)
		if err != nil {
			return nil, err
		}
		for _, e := range existing {
			if e.Name == att.Name {
				return nil, fmt.Errorf("%q already exists: %w", att.Name, common.ErrDuplicateFileName)
			}
		}
	}

	if IsZipName(att.Name) && att.Encryption == models.EncryptionNone {
		data, err := s.readBounded(content)
		if err != nil {
			return nil, err
		}
		att.Encryption = DetectZipEncryption(data)
		content = bytes.NewReader(data)
	}

	att.CreatedBy = actor.Label()
	att.CreatedAt = time.Now()
	stored, err := s.repo.Put(ctx, path, att, content, s.maxFileSize)
	if err != nil {
		if errors.Is(err, common.ErrFileTooLarge) {
			return nil, common.ErrFileTooLarge
		}
		return nil, err
	}

	s.recordEvent(ctx, actor, areaID, models.EventUpload, stored, actor.UserID)
	s.updateIndex(ctx, areaID)
	return stored, nil
}

// Download streams one attachment. Denial and absence both surface as
// typed errors; the HTTP layer decides which callers may tell them apart.
func (s *Store) Download(ctx context.Context, checker access.Checker, actor access.Actor, areaID uuid.UUID, listID, fileID string) (*models.Attachment, io.ReadCloser, error) {
	if err := checker.CheckDownload(ctx, areaID, listID, fileID); err != nil {
		return nil, nil, err
	}
	att, content, err := s.repo.Get(ctx, storage.AreaPath(areaID, listID), fileID)
	if err != nil {
		return nil, nil, err
	}
	s.recordEvent(ctx, actor, areaID, models.EventDownload, att, ownerOf(att))
	return att, content, nil
}

// Rename updates the name and/or description of an attachment. Content is
// immutable once stored; only the provided fields change.
func (s *Store) Rename(ctx context.Context, checker access.Checker, actor access.Actor, areaID uuid.UUID, listID, fileID string, newName, newDescription *string) (*models.Attachment, error) {
	if err := checker.CheckUpdate(ctx, areaID, listID, fileID); err != nil {
		return nil, err
	}
	att, err := s.repo.Rename(ctx, storage.AreaPath(areaID, listID), fileID, newName, newDescription, actor.Label())
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, actor, areaID, models.EventModification, att, ownerOf(att))
	s.updateIndex(ctx, areaID)
	return att, nil
}

// Delete removes an attachment. Deleting an already-deleted file returns
// false without an error; the audit entry is written only when a file was
// actually removed.
func (s *Store) Delete(ctx context.Context, checker access.Checker, actor access.Actor, areaID uuid.UUID, listID, fileID string) (bool, error) {
	if err := checker.CheckDelete(ctx, areaID, listID, fileID); err != nil {
		return false, err
	}
	path := storage.AreaPath(areaID, listID)
	att, _, err := s.repo.Get(ctx, path, fileID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, path, fileID)
	if err != nil || !deleted {
		return false, err
	}
	s.recordEvent(ctx, actor, areaID, models.EventDelete, att, ownerOf(att))
	s.updateIndex(ctx, areaID)
	return true, nil
}

// RecordEvent writes an audit entry outside the single-file operations;
// the multi-download call sites use it for DOWNLOAD_ALL and DOWNLOAD_MULTI
// events. Best-effort like every other audit append.
func (s *Store) RecordEvent(ctx context.Context, actor access.Actor, areaID uuid.UUID, event models.AuditEvent, att *models.Attachment) {
	s.recordEvent(ctx, actor, areaID, event, att, ownerOf(att))
}

// InternalList enumerates a list without an access check. Reserved for
// trusted infrastructure (cleanup, index maintenance, export); never wire
// it to a network handler.
func (s *Store) InternalList(ctx context.Context, areaID uuid.UUID, listID string) ([]models.Attachment, error) {
	return s.repo.List(ctx, storage.AreaPath(areaID, listID))
}

// InternalGet fetches one attachment without an access check. Same caveat
// as InternalList.
func (s *Store) InternalGet(ctx context.Context, path, fileID string) (*models.Attachment, io.ReadCloser, error) {
	return s.repo.Get(ctx, path, fileID)
}

// InternalDelete removes an attachment without an access check or audit
// entry. Same caveat as InternalList.
func (s *Store) InternalDelete(ctx context.Context, path, fileID string) (bool, error) {
	return s.repo.Delete(ctx, path, fileID)
}

// MaxFileSize exposes the configured upload bound for the HTTP layer.
func (s *Store) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *Store) readBounded(content io.Reader) ([]byte, error) {
	if s.maxFileSize <= 0 {
		return io.ReadAll(content)
	}
	data, err := io.ReadAll(io.LimitReader(content, s.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, common.ErrFileTooLarge
	}
	return data, nil
}

// recordEvent appends an audit entry and triggers notifications. Failures
// here never propagate: the primary mutation has already committed.
func (s *Store) recordEvent(ctx context.Context, actor access.Actor, areaID uuid.UUID, event models.AuditEvent, att *models.Attachment, uploadOwner *uuid.UUID) {
	entry := &models.AuditEntry{
		AreaID:        areaID,
		Event:         event,
		ActingUserID:  actor.UserID,
		UploadOwnerID: uploadOwner,
		Timestamp:     time.Now(),
	}
	if actor.UserID == nil {
		entry.ActingUserInfo = actor.Info
	}
	if att != nil {
		entry.FileID = att.FileID
		entry.FileName = att.Name
		entry.FileSize = att.SizeBytes
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		log.Printf("audit append failed for area %s: %v", areaID, err)
		return
	}

	if s.notifier == nil {
		return
	}
	area, err := s.areas.Find(ctx, areaID)
	if err != nil {
		log.Printf("notification skipped, area %s not loadable: %v", areaID, err)
		return
	}
	if err := s.notifier.Notify(ctx, area, entry); err != nil {
		log.Printf("notification failed for area %s: %v", areaID, err)
		return
	}
	if err := s.audit.MarkNotified(ctx, []uuid.UUID{entry.ID}); err != nil {
		log.Printf("marking audit entry notified failed: %v", err)
	}
}

// updateIndex rolls the attachment names, ids, counter, and total size up
// into the owning area's index columns. Absence of the area (or a store
// that does not carry the columns) is a no-op, not an error.
func (s *Store) updateIndex(ctx context.Context, areaID uuid.UUID) {
	area, err := s.areas.Find(ctx, areaID)
	if err != nil {
		log.Printf("index update skipped for area %s: %v", areaID, err)
		return
	}

	lists := append([]string{""}, area.ListIDs...)
	var names, ids []string
	var total int64
	var counter int
	for _, listID := range lists {
		atts, err := s.repo.List(ctx, storage.AreaPath(areaID, listID))
		if err != nil {
			log.Printf("index update for area %s: listing %q failed: %v", areaID, listID, err)
			continue
		}
		for _, att := range atts {
			names = append(names, att.Name)
			ids = append(ids, att.FileID)
			total += att.SizeBytes
			counter++
		}
	}

	err = s.areas.UpdateIndexFields(ctx, areaID, strings.Join(names, " "), strings.Join(ids, " "), counter, total)
	if err != nil {
		log.Printf("index update failed for area %s: %v", areaID, err)
	}
}

func ownerOf(att *models.Attachment) *uuid.UUID {
	if att == nil {
		return nil
	}
	id, err := uuid.Parse(att.CreatedBy)
	if err != nil {
		return nil
	}
	return &id
}
