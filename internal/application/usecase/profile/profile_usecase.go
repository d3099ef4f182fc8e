package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/resume"
)

// ProfileUseCase serves whole-profile reads and explicit creation.
type ProfileUseCase struct {
	deps ManagerDeps
}

func NewProfileUseCase(deps ManagerDeps) *ProfileUseCase {
	return &ProfileUseCase{deps: deps}
}

type GetProfileInput struct {
	UserID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	p, err := loadProfile(ctx, uc.deps, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &GetProfileOutput{Profile: p}, nil
}

// ExecuteGetOrCreate is idempotent per user.
func (uc *ProfileUseCase) ExecuteGetOrCreate(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetOrCreate")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	if _, err := uc.deps.Users.FindByID(ctx, input.UserID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p, err := uc.deps.Profiles.GetOrCreate(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get or create profile failed: %w", err)
	}
	return &GetProfileOutput{Profile: p}, nil
}

type GetResumeOutput struct {
	Resume  *resume.Resume
	Version int64
}

func (uc *ProfileUseCase) ExecuteGetResume(ctx context.Context, input GetProfileInput) (*GetResumeOutput, error) {
	out, err := uc.ExecuteGetProfile(ctx, input)
	if err != nil {
		return nil, err
	}
	return &GetResumeOutput{Resume: resume.Build(out.Profile), Version: out.Profile.Version}, nil
}

// loadProfile reads through the cache when one is configured.
func loadProfile(ctx context.Context, deps ManagerDeps, userID uuid.UUID) (*profile.Profile, error) {
	if deps.Cache != nil {
		if p, ok := deps.Cache.Get(ctx, userID); ok {
			return p, nil
		}
	}

	p, err := deps.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if deps.Cache != nil {
		if err := deps.Cache.Set(ctx, p); err != nil {
			deps.Logger.Warn("Failed to cache profile", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return p, nil
}

// cacheCommitted writes a freshly committed profile through to the cache.
// The cache keeps whichever copy is newer, so a slow reader holding an older
// version cannot replace it.
func cacheCommitted(ctx context.Context, deps ManagerDeps, p *profile.Profile) {
	if deps.Cache == nil || p == nil {
		return
	}
	if err := deps.Cache.Set(ctx, p); err != nil {
		deps.Logger.Warn("Failed to cache committed profile", zap.String("user_id", p.UserID.String()), zap.Error(err))
		if err := deps.Cache.Invalidate(ctx, p.UserID); err != nil {
			deps.Logger.Warn("Failed to invalidate cached profile", zap.String("user_id", p.UserID.String()), zap.Error(err))
		}
	}
}

// notifyChange caches the committed profile and publishes ev in the background.
func notifyChange(ctx context.Context, deps ManagerDeps, p *profile.Profile, ev profile.Event) {
	cacheCommitted(ctx, deps, p)

	if deps.Events == nil {
		return
	}
	pubCtx := context.WithoutCancel(ctx)
	go func() {
		if err := deps.Events.Publish(pubCtx, ev); err != nil {
			deps.Logger.Error("Failed to publish profile event", err,
				zap.String("event_type", string(ev.EventType)),
				zap.String("user_id", ev.UserID.String()),
			)
		}
	}()
}
