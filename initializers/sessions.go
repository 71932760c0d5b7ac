package initializers

import (
	"log"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware builds the HTTP session layer backing anonymous
// external access. Cookie-backed, so anonymous session state travels with
// the browser and is never persisted server-side.
func SessionMiddleware() gin.HandlerFunc {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // anonymous sessions live at most a day
		HttpOnly: true,
		Secure:   true,
	})
	return sessions.Sessions("dtsession", store)
}
