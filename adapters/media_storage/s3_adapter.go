package media_storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

// s3Adapter stores images in any S3 compatible bucket (AWS, R2, MinIO).
// It does not transform images, so the worker skips thumbnails for it.
type s3Adapter struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Adapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.Uploader, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket has not config")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.S3.AccessKeyID,
				cfg.S3.SecretAccessKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config failed: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Info("S3 client initialized", zap.String("bucket", cfg.S3.Bucket))
	return &s3Adapter{
		client:        client,
		bucket:        cfg.S3.Bucket,
		publicBaseURL: strings.TrimRight(cfg.S3.PublicBaseURL, "/"),
	}, nil
}

func (a *s3Adapter) Upload(ctx context.Context, file io.Reader, folder, publicID, contentType string) (*service.UploadResult, error) {
	key := path.Join(folder, publicID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload s3 object: %w", err)
	}
	return &service.UploadResult{URL: a.objectURL(key), PublicID: key}, nil
}

func (a *s3Adapter) Delete(ctx context.Context, publicID string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3 object: %w", err)
	}
	return nil
}

func (a *s3Adapter) objectURL(key string) string {
	if a.publicBaseURL != "" {
		return a.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", a.bucket, key)
}
