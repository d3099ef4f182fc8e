package media_storage

import (
	"context"
	"fmt"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

// New builds the configured uploader. The transformer is nil for providers
// without image transformations; both are nil when uploads are disabled.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (service.Uploader, service.ImageTransformer, error) {
	switch cfg.Storage.Provider {
	case config.StorageCloudinary:
		a, err := NewCloudinaryAdapter(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return a, a, nil
	case config.StorageS3:
		a, err := NewS3Adapter(ctx, cfg, log)
		return a, nil, err
	case config.StorageNone, "":
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
}
