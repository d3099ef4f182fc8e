package persistence

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

// MemoryProfileRepo keeps profiles in process. Every operation holds the
// lock for its whole read-modify-write so it is as atomic as the database
// drivers. Callers only ever see clones.
type MemoryProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*profile.Profile
}

func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{profiles: make(map[uuid.UUID]*profile.Profile)}
}

func (r *MemoryProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
	}
	return p.Clone(), nil
}

func (r *MemoryProfileRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getOrCreateLocked(userID).Clone(), nil
}

func (r *MemoryProfileRepo) getOrCreateLocked(userID uuid.UUID) *profile.Profile {
	p, ok := r.profiles[userID]
	if !ok {
		p = profile.New(userID)
		r.profiles[userID] = p
	}
	return p
}

func (r *MemoryProfileRepo) PushItem(_ context.Context, userID uuid.UUID, c profile.Collection, rec profile.Record) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.profiles[userID]
	p := r.getOrCreateLocked(userID)
	if err := p.Append(c, rec); err != nil {
		if !existed {
			delete(r.profiles, userID)
		}
		return nil, apperror.NewPersistence("failed to push item", err)
	}
	if existed {
		p.Touch()
	}
	return p.Clone(), nil
}

func (r *MemoryProfileRepo) ReplaceItem(_ context.Context, userID uuid.UUID, c profile.Collection, itemID string, rec profile.Record, expectedVersion int64) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
	}
	if expectedVersion != 0 && p.Version != expectedVersion {
		return nil, apperror.NewVersionConflict(apperror.ResourceProfile, expectedVersion)
	}

	next := p.Clone()
	replaced, err := next.Replace(c, itemID, rec)
	if err != nil {
		return nil, apperror.NewPersistence("failed to replace item", err)
	}
	if !replaced {
		return nil, apperror.NewNotFound(apperror.ResourceItem, itemID)
	}
	next.Touch()
	r.profiles[userID] = next
	return next.Clone(), nil
}

func (r *MemoryProfileRepo) PullItem(_ context.Context, userID uuid.UUID, c profile.Collection, itemID string) (*profile.Profile, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, false, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
	}

	removed, err := p.Remove(c, itemID)
	if err != nil {
		return nil, false, apperror.NewPersistence("failed to pull item", err)
	}
	if removed {
		p.Touch()
	}
	return p.Clone(), removed, nil
}

func (r *MemoryProfileRepo) ReplaceCollection(_ context.Context, userID uuid.UUID, c profile.Collection, records []profile.Record, expectedVersion int64) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
	}
	if expectedVersion != 0 && p.Version != expectedVersion {
		return nil, apperror.NewVersionConflict(apperror.ResourceProfile, expectedVersion)
	}

	next := p.Clone()
	if err := next.SetCollection(c, records); err != nil {
		return nil, apperror.NewPersistence("failed to replace collection", err)
	}
	next.Touch()
	r.profiles[userID] = next
	return next.Clone(), nil
}

// SetImage creates the profile when storing an image; clearing requires an
// existing profile.
func (r *MemoryProfileRepo) SetImage(_ context.Context, userID uuid.UUID, img *profile.Image) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, existed := r.profiles[userID]
	if !existed {
		if img == nil {
			return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
		}
		p = r.getOrCreateLocked(userID)
	}

	if img != nil {
		cp := *img
		p.Image = &cp
	} else {
		p.Image = nil
	}
	if existed {
		p.Touch()
	}
	return p.Clone(), nil
}

func (r *MemoryProfileRepo) SetImageThumbnail(_ context.Context, userID uuid.UUID, publicID, thumbnailURL string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperror.NewNotFound(apperror.ResourceProfile, userID.String())
	}
	if p.Image == nil || p.Image.PublicID != publicID {
		return nil, apperror.NewNotFound(apperror.ResourceImage, publicID)
	}

	img := *p.Image
	img.ThumbnailURL = thumbnailURL
	p.Image = &img
	p.UpdatedAt = time.Now().UTC()
	return p.Clone(), nil
}

// MemoryUserRepo is the identity store of the memory driver.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user.User
}

func NewMemoryUserRepo(users ...user.User) *MemoryUserRepo {
	r := &MemoryUserRepo{users: make(map[uuid.UUID]user.User)}
	for _, u := range users {
		r.Put(u)
	}
	return r
}

func (r *MemoryUserRepo) Put(u user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	r.users[u.ID] = u
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFound(apperror.ResourceUser, id.String())
	}
	return &u, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.findBy(func(u user.User) bool { return u.Email == strings.ToLower(email) }, email)
}

func (r *MemoryUserRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return r.findBy(func(u user.User) bool { return u.Username == username }, username)
}

func (r *MemoryUserRepo) findBy(match func(user.User) bool, identifier string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound(apperror.ResourceUser, identifier)
}

var (
	_ profile.Repository = (*MemoryProfileRepo)(nil)
	_ user.Repository    = (*MemoryUserRepo)(nil)
)
