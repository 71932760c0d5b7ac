package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/micromata/datatransfer-backend/auth/middleware"
	"github.com/micromata/datatransfer-backend/handlers"
)

// RegisterAttachmentRoutes wires the data-transfer HTTP surface. Every
// attachment endpoint is reachable by internal users (bearer token) and by
// anonymous sessions alike; the handler resolves the trust context per
// request. The internal always-allow checker is never routed here.
func RegisterAttachmentRoutes(r *gin.Engine, h *handlers.Handler) {
	api := r.Group("/api")
	api.Use(middleware.AuthOptional())

	api.POST("/login", h.Login)
	api.GET("/logout", h.Logout)

	area := api.Group("/areas/:areaID")
	area.GET("/attachments", h.ListAttachments)
	area.POST("/attachments", h.UploadAttachment)
	area.GET("/attachments/download", h.DownloadAttachment)
	area.GET("/attachments/downloadAll", h.DownloadAll)
	area.GET("/attachments/multiDownload", h.MultiDownload)
	area.POST("/attachments/delete", h.DeleteAttachment)
	area.POST("/attachments/modify", h.ModifyAttachment)

	area.GET("/sharelink/qr", middleware.AuthRequired(), h.ShareLinkQR)
}
