package service

import (
	"context"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
)

type EventPublisher interface {
	Publish(ctx context.Context, ev profile.Event) error
}
