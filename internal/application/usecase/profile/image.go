package profile

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

const DefaultMaxImageSize int64 = 5 << 20

// ImageUseCase manages the profile photo. A nil uploader disables uploads.
type ImageUseCase struct {
	deps     ManagerDeps
	uploader service.Uploader
	maxSize  int64
}

func NewImageUseCase(deps ManagerDeps, u service.Uploader, maxSize int64) *ImageUseCase {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &ImageUseCase{deps: deps, uploader: u, maxSize: maxSize}
}

type UploadImageInput struct {
	UserID      uuid.UUID
	File        io.Reader
	ContentType string
	Size        int64
}

type ImageOutput struct {
	Profile *profile.Profile
	Image   *profile.Image
}

func (uc *ImageUseCase) ExecuteUpload(ctx context.Context, input UploadImageInput) (*ImageOutput, error) {
	ctx, span := tracer.Start(ctx, "UploadImage")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	if uc.uploader == nil {
		return nil, apperror.NewInternal("image storage is not configured", nil)
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("content type %q is not an image", input.ContentType), nil)
	}
	if input.Size <= 0 || input.Size > uc.maxSize {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("image must be between 1 byte and %d bytes", uc.maxSize), nil)
	}

	if _, err := uc.deps.Users.FindByID(ctx, input.UserID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, apperror.NewInternal("failed to generate image id", err)
	}
	folder := fmt.Sprintf("users/%s/profile", input.UserID.String())

	res, err := uc.uploader.Upload(ctx, io.LimitReader(input.File, uc.maxSize), folder, key, input.ContentType)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to upload profile image", err)
	}

	var previous *profile.Image
	if current, err := uc.deps.Profiles.GetByUserID(ctx, input.UserID); err == nil && current.Image != nil {
		previous = current.Image
	}

	img := &profile.Image{URL: res.URL, PublicID: res.PublicID, ContentType: input.ContentType}
	p, err := uc.deps.Profiles.SetImage(ctx, input.UserID, img)
	if err != nil {
		span.RecordError(err)
		uc.deleteAsync(res.PublicID)
		return nil, err
	}

	if previous != nil && previous.PublicID != res.PublicID {
		uc.deleteAsync(previous.PublicID)
	}

	ev := profile.NewEvent(profile.EventImageUploaded, p, "", "")
	ev.ImagePublicID = res.PublicID
	notifyChange(ctx, uc.deps, p, ev)

	return &ImageOutput{Profile: p, Image: p.Image}, nil
}

func (uc *ImageUseCase) ExecuteGet(ctx context.Context, input GetProfileInput) (*ImageOutput, error) {
	p, err := loadProfile(ctx, uc.deps, input.UserID)
	if err != nil {
		return nil, err
	}
	if p.Image == nil {
		return nil, apperror.NewNotFound(apperror.ResourceImage, input.UserID.String())
	}
	return &ImageOutput{Profile: p, Image: p.Image}, nil
}

// ExecuteDelete clears the photo. Deleting when none is stored is a no-op.
func (uc *ImageUseCase) ExecuteDelete(ctx context.Context, input GetProfileInput) (*ImageOutput, error) {
	ctx, span := tracer.Start(ctx, "DeleteImage")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	p, err := uc.deps.Profiles.GetByUserID(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if p.Image == nil {
		return &ImageOutput{Profile: p}, nil
	}

	publicID := p.Image.PublicID
	p, err = uc.deps.Profiles.SetImage(ctx, input.UserID, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.deleteAsync(publicID)

	ev := profile.NewEvent(profile.EventImageDeleted, p, "", "")
	ev.ImagePublicID = publicID
	notifyChange(ctx, uc.deps, p, ev)

	return &ImageOutput{Profile: p}, nil
}

func (uc *ImageUseCase) deleteAsync(publicID string) {
	if uc.uploader == nil || publicID == "" {
		return
	}
	go func() {
		if err := uc.uploader.Delete(context.Background(), publicID); err != nil {
			uc.deps.Logger.Error("Failed to delete stored image", err, zap.String("public_id", publicID))
		}
	}()
}

// ProcessImageUseCase runs in the worker and derives the thumbnail of a
// freshly uploaded photo.
type ProcessImageUseCase struct {
	deps        ManagerDeps
	transformer service.ImageTransformer
}

func NewProcessImageUseCase(deps ManagerDeps, t service.ImageTransformer) *ProcessImageUseCase {
	return &ProcessImageUseCase{deps: deps, transformer: t}
}

func (uc *ProcessImageUseCase) Execute(ctx context.Context, ev profile.Event) error {
	l := uc.deps.Logger.With(zap.String("user_id", ev.UserID.String()), zap.String("event_type", string(ev.EventType)))

	if ev.EventType != profile.EventImageUploaded {
		return nil
	}
	if uc.transformer == nil {
		l.Debug("No image transformer configured, skipping thumbnail")
		return nil
	}

	p, err := uc.deps.Profiles.GetByUserID(ctx, ev.UserID)
	if err != nil {
		if apperror.IsNotFound(err, "") {
			l.Warn("Profile not found, skipping event")
			return nil
		}
		return apperror.NewInternal("failed to get profile", err)
	}

	if p.Image == nil || p.Image.PublicID != ev.ImagePublicID {
		l.Info("Image was replaced or removed, skipping", zap.String("public_id", ev.ImagePublicID))
		return nil
	}
	if p.Image.ThumbnailURL != "" {
		l.Info("Thumbnail already generated, skipping")
		return nil
	}

	thumbURL, err := uc.transformer.ThumbnailURL(p.Image.PublicID)
	if err != nil {
		return apperror.NewInternal("failed to build thumbnail URL", err)
	}

	// The write is guarded by the public id, so an upload that lands after
	// the read above is never overwritten.
	p, err = uc.deps.Profiles.SetImageThumbnail(ctx, ev.UserID, ev.ImagePublicID, thumbURL)
	if err != nil {
		if apperror.IsNotFound(err, "") {
			l.Info("Image was replaced or removed before the thumbnail was stored", zap.String("public_id", ev.ImagePublicID))
			return nil
		}
		return fmt.Errorf("failed to store thumbnail: %w", err)
	}
	cacheCommitted(ctx, uc.deps, p)

	l.Info("Generated profile image thumbnail", zap.String("thumbnail_url", thumbURL))
	return nil
}
