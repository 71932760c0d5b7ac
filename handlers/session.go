package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/micromata/datatransfer-backend/common"
)

// Login authenticates an anonymous external user with an area token and
// password and establishes the session the attachment endpoints rely on.
func (h *Handler) Login(c *gin.Context) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
		UserInfo string `json:"userInfo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	session, area, err := h.Sessions.Login(c, body.Token, body.Password, body.UserInfo)
	if err != nil {
		respondError(c, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"areaId":                  area.ID,
		"areaName":                area.Name,
		"externalDownloadEnabled": area.ExternalDownload,
		"externalUploadEnabled":   area.ExternalUpload,
		"userInfo":                session.UserInfo,
	})
}

// Logout invalidates the whole HTTP session, including every area token it
// held.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}

// ShareLinkQR renders the external access link of an area as a QR code.
// Internal users only; the link embeds the access token but not the
// password.
func (h *Handler) ShareLinkQR(c *gin.Context) {
	areaID, ok := parseAreaID(c)
	if !ok {
		return
	}
	caller := h.resolveCaller(c, areaID)
	if caller.anonymous {
		respondError(c, common.ErrAccessDenied, true)
		return
	}
	if err := caller.checker.CheckSelect(c.Request.Context(), areaID, ""); err != nil {
		respondError(c, err, false)
		return
	}

	area, err := h.Areas.Find(c.Request.Context(), areaID)
	if err != nil {
		respondError(c, err, false)
		return
	}

	link := os.Getenv("BASE_URL") + "/datatransfer?token=" + area.ExternalAccessToken
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
