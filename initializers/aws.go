package initializers

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	S3Client *s3.Client
	S3Bucket string
)

// InitAWS builds the S3 client backing the production file repository. A
// half-configured S3 setup fails at startup rather than on the first upload.
func InitAWS() {
	region := os.Getenv("AWS_REGION")
	S3Bucket = os.Getenv("AWS_BUCKET_NAME")
	if region == "" || S3Bucket == "" {
		log.Fatal("AWS_REGION and AWS_BUCKET_NAME must both be set")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
	)
	if err != nil {
		log.Fatalf("loading AWS config: %v", err)
	}
	S3Client = s3.NewFromConfig(cfg)
}
