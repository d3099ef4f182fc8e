package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
)

// ProfileCache is a read-through cache of whole profiles. A miss or a cache
// failure both report ok=false. Set keeps the newer of the cached and the
// given copy, ordered by Version and then UpdatedAt.
type ProfileCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, bool)
	Set(ctx context.Context, p *profile.Profile) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
