package service

import (
	"context"
	"io"
)

type UploadResult struct {
	URL      string
	PublicID string
}

type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder, publicID, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageTransformer derives resized variants of an uploaded image. Only
// providers with on-the-fly transformations implement it.
type ImageTransformer interface {
	ThumbnailURL(publicID string) (string, error)
}
