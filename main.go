package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/micromata/datatransfer-backend/access"
	"github.com/micromata/datatransfer-backend/areas"
	"github.com/micromata/datatransfer-backend/attachments"
	"github.com/micromata/datatransfer-backend/audit"
	"github.com/micromata/datatransfer-backend/auth/middleware"
	"github.com/micromata/datatransfer-backend/export"
	"github.com/micromata/datatransfer-backend/handlers"
	"github.com/micromata/datatransfer-backend/initializers"
	"github.com/micromata/datatransfer-backend/jobs"
	"github.com/micromata/datatransfer-backend/notify"
	"github.com/micromata/datatransfer-backend/routes"
	"github.com/micromata/datatransfer-backend/sessions"
	"github.com/micromata/datatransfer-backend/storage"
)

const (
	defaultPort        = "8080"
	defaultMaxFileSize = int64(100 << 20) // 100 MiB
)

func main() {
	initializers.ConnectToDatabase()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	var repo storage.FileRepository
	if os.Getenv("AWS_BUCKET_NAME") != "" {
		initializers.InitAWS()
		repo = storage.NewS3Repository(initializers.S3Client, initializers.S3Bucket)
	} else {
		log.Println("AWS_BUCKET_NAME not set, using in-memory file repository")
		repo = storage.NewMemoryRepository()
	}

	areaStore := areas.NewGormStore(initializers.DB)
	auditLog := audit.NewGormLog(initializers.DB)
	notifier := notify.NewNotifier(notify.LogSender{})
	store := attachments.NewStore(repo, areaStore, auditLog, notifier, maxFileSize())

	h := &handlers.Handler{
		Store:    store,
		Areas:    areaStore,
		Sessions: sessions.NewStore(areaStore),
		Exporter: export.NewZipExporter(repo),
		Rights:   access.NewObserverRights(areaStore),
	}

	ctx := context.Background()
	jobs.StartCleanupJob(ctx, jobs.NewCleanupJob(repo, areaStore), time.Hour)
	jobs.StartNotifyJob(ctx, jobs.NewNotifyJob(auditLog, areaStore, notifier), 15*time.Minute)
	jobs.StartAuditPurge(ctx, auditLog, auditRetention())

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("BASE_URL")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Access-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(
		middleware.RateLimitMiddleware(1, 5),
		initializers.SessionMiddleware(),
	)

	routes.RegisterAttachmentRoutes(router, h)

	log.Printf("data transfer backend listening on :%s", port)
	log.Fatal(router.Run(":" + port))
}

func maxFileSize() int64 {
	if v := os.Getenv("MAX_FILE_SIZE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
		log.Printf("ignoring invalid MAX_FILE_SIZE_BYTES=%q", v)
	}
	return defaultMaxFileSize
}

func auditRetention() time.Duration {
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		log.Printf("ignoring invalid AUDIT_RETENTION_DAYS=%q", v)
	}
	return 365 * 24 * time.Hour
}
