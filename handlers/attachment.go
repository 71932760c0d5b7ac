package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/models"
)

// ListAttachments returns the attachments of an area, newest first.
func (h *Handler) ListAttachments(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)

	atts, err := h.Store.List(c.Request.Context(), caller.checker, areaID, c.Query("listId"))
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": atts})
}

// UploadAttachment stores one multipart file upload.
func (h *Handler) UploadAttachment(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	content, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}
	defer content.Close()

	att := models.Attachment{
		Name:        file.Filename,
		Description: c.PostForm("description"),
		Encryption:  models.EncryptionMode(c.PostForm("encryption")),
	}
	allowDuplicates := c.PostForm("allowDuplicates") == "true"
	listID := c.PostForm("listId")

	stored, err := h.Store.Upload(c.Request.Context(), caller.checker, caller.actor, areaID, listID, att, content, allowDuplicates)
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}

	if caller.session != nil {
		// remember the upload so "download only your own files" works even
		// when the area disallows external downloads
		if err := h.Sessions.RegisterOwnership(c, caller.token, stored.FileID); err != nil {
			log.Printf("registering upload ownership failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"attachment": stored})
}

// DownloadAttachment streams a single file.
func (h *Handler) DownloadAttachment(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)
	fileID := c.Query("fileId")
	listID := c.Query("listId")

	att, content, err := h.Store.Download(c.Request.Context(), caller.checker, caller.actor, areaID, listID, fileID)
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}
	defer content.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", att.Name),
	}
	c.DataFromReader(http.StatusOK, att.SizeBytes, "application/octet-stream", content, headers)
}

// DownloadAll streams the whole area (or the session's own uploads, when
// external downloads are disabled) as one zip.
func (h *Handler) DownloadAll(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)
	listID := c.Query("listId")

	atts, err := h.Store.List(c.Request.Context(), caller.checker, areaID, listID)
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}

	selected := h.filterDownloadable(c, caller, areaID, listID, atts)
	h.streamZip(c, caller, areaID, listID, selected, models.EventDownloadAll)
}

// MultiDownload streams an explicit selection as one zip. The fileIds
// query parameter takes comma-separated file ids; a value is matched as an
// id prefix, so shortened ids from the UI work too.
func (h *Handler) MultiDownload(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)
	listID := c.Query("listId")

	var prefixes []string
	for _, p := range strings.Split(c.Query("fileIds"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fileIds given"})
		return
	}

	atts, err := h.Store.List(c.Request.Context(), caller.checker, areaID, listID)
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}

	var selected []models.Attachment
	for _, att := range h.filterDownloadable(c, caller, areaID, listID, atts) {
		for _, p := range prefixes {
			if strings.HasPrefix(att.FileID, p) {
				selected = append(selected, att)
				break
			}
		}
	}
	h.streamZip(c, caller, areaID, listID, selected, models.EventDownloadMulti)
}

// DeleteAttachment removes one file. Deleting an already-deleted file
// reports deleted=false rather than failing.
func (h *Handler) DeleteAttachment(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)

	var body struct {
		FileID string `json:"fileId"`
		ListID string `json:"listId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.FileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	deleted, err := h.Store.Delete(c.Request.Context(), caller.checker, caller.actor, areaID, body.ListID, body.FileID)
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ModifyAttachment renames a file and/or updates its description.
func (h *Handler) ModifyAttachment(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)

	var body struct {
		FileID         string  `json:"fileId"`
		ListID         string  `json:"listId"`
		NewName        *string `json:"newName"`
		NewDescription *string `json:"newDescription"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.FileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if body.NewName == nil && body.NewDescription == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to modify"})
		return
	}

	att, err := h.Store.Rename(c.Request.Context(), caller.checker, caller.actor, areaID, body.ListID, body.FileID, body.NewName, body.NewDescription)
	if err != nil {
		respondError(c, err, caller.anonymous)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachment": att})
}

// filterDownloadable narrows a listing to the files the caller may
// actually fetch, by running the per-file download check. For anonymous
// sessions on an area without external downloads this leaves exactly the
// session's own uploads.
func (h *Handler) filterDownloadable(c *gin.Context, caller caller, areaID uuid.UUID, listID string, atts []models.Attachment) []models.Attachment {
	var out []models.Attachment
	for _, att := range atts {
		if err := caller.checker.CheckDownload(c.Request.Context(), areaID, listID, att.FileID); err != nil {
			continue
		}
		out = append(out, att)
	}
	return out
}

func (h *Handler) streamZip(c *gin.Context, caller caller, areaID uuid.UUID, listID string, selected []models.Attachment, event models.AuditEvent) {
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "datatransfer-"+areaID.String()+".zip"))

	written, err := h.Exporter.WriteZip(c.Request.Context(), c.Writer, areaID, listID, selected)
	if err != nil {
		// headers are gone; just log the aborted export
		log.Printf("zip export for area %s aborted after %d file(s): %v", areaID, written, err)
		return
	}

	summary := &models.Attachment{Name: fmt.Sprintf("%d file(s)", written)}
	h.Store.RecordEvent(c.Request.Context(), caller.actor, areaID, event, summary)
}
