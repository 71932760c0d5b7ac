package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/micromata/datatransfer-backend/access"
	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/attachments"
	"github.com/micromata/datatransfer-backend/auth/middleware"
	"github.com/micromata/datatransfer-backend/common"
	"github.com/micromata/datatransfer-backend/export"
	"github.com/micromata/datatransfer-backend/sessions"
)

// Handler carries the subsystem services the HTTP surface dispatches into.
type Handler struct {
	Store    *attachments.Store
	Areas    areas.Store
	Sessions *sessions.Store
	Exporter *export.ZipExporter
	Rights   access.EntityRights
}

// caller is the resolved trust context of one request: exactly one checker
// plus the identity recorded on audit entries.
type caller struct {
	checker   access.Checker
	actor     access.Actor
	anonymous bool
	session   *sessions.Session
	token     string
}

// resolveCaller picks the checker variant for a request. Internal users
// (valid bearer token) get the entity-backed checker; anonymous callers
// with a live session for a token belonging to this area get the
// session-backed checker; everyone else falls back to deny-all.
func (h *Handler) resolveCaller(c *gin.Context, areaID uuid.UUID) caller {
	if userID, ok := middleware.UserID(c); ok {
		return caller{
			checker: access.NewEntityChecker(h.Areas, h.Rights, userID),
			actor:   access.Actor{UserID: &userID},
		}
	}

	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("X-Access-Token")
	}
	if token != "" {
		if session := h.Sessions.Resolve(c, token); session != nil {
			area, err := h.Areas.FindByToken(c.Request.Context(), token)
			if err == nil && area.ID == areaID {
				info := session.UserInfo
				if info == "" {
					info = "external user"
				}
				return caller{
					checker:   access.NewSessionChecker(h.Areas, session.Owns),
					actor:     access.Actor{Info: info},
					anonymous: true,
					session:   session,
					token:     token,
				}
			}
		}
	}

	return caller{
		checker:   access.NewDenyAllChecker(h.Areas),
		actor:     access.Actor{Info: "anonymous"},
		anonymous: true,
	}
}

// respondError maps the error taxonomy to status codes. Anonymous callers
// must not be able to tell denial from absence, and programmer errors are
// suppressed to a generic bad request for them.
func respondError(c *gin.Context, err error, anonymous bool) {
	switch {
	case errors.Is(err, common.ErrAccessDenied):
		if anonymous {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, common.ErrDuplicateFileName):
		c.JSON(http.StatusConflict, gin.H{"error": "A file with this name already exists"})
	case errors.Is(err, common.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the size limit"})
	case errors.Is(err, common.ErrUnsupportedOperation):
		if anonymous {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func parseAreaID(c *gin.Context) (uuid.UUID, bool) {
	areaID, err := uuid.Parse(c.Param("areaID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid area id"})
		return uuid.Nil, false
	}
	return areaID, true
}
