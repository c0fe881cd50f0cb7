package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/avolkov/streamtube/internal/config"
)

// Uploader stores a client-submitted file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

type S3Uploader struct {
	Client  *s3.Client
	Bucket  string
	BaseURL string
}

func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &S3Uploader{
		Client:  client,
		Bucket:  cfg.S3Bucket,
		BaseURL: strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket,
	}, nil
}

func storageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(filename))
}

func (u *S3Uploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := storageKey(file.Filename)

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.Bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}

	return u.BaseURL + "/" + key, nil
}
