package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

// profileRepoContract holds the behaviour every store driver must share.
// Driver suites embed it and set repo in their setup.
type profileRepoContract struct {
	suite.Suite
	repo profile.Repository
}

func skill(id, domain, name string) *profile.Skill {
	return &profile.Skill{ItemID: id, Domain: domain, Name: name, IncludeInResume: true}
}

func skillIDs(p *profile.Profile) []string {
	ids := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		ids = append(ids, s.ItemID)
	}
	return ids
}

func (s *profileRepoContract) seedSkills(userID uuid.UUID, ids ...string) *profile.Profile {
	var p *profile.Profile
	for _, id := range ids {
		var err error
		p, err = s.repo.PushItem(context.Background(), userID, profile.CollectionSkills, skill(id, "Languages", id))
		s.Require().NoError(err)
	}
	return p
}

func (s *profileRepoContract) Test_GetByUserID_Missing() {
	_, err := s.repo.GetByUserID(context.Background(), uuid.New())
	s.True(apperror.IsNotFound(err, apperror.ResourceProfile))
}

func (s *profileRepoContract) Test_GetOrCreate_Idempotent() {
	ctx := context.Background()
	userID := uuid.New()

	first, err := s.repo.GetOrCreate(ctx, userID)
	s.Require().NoError(err)
	second, err := s.repo.GetOrCreate(ctx, userID)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(userID, second.UserID)
	s.Equal(int64(1), second.Version)
	s.NotNil(second.Skills)
	s.Empty(second.Education)
}

func (s *profileRepoContract) Test_PushItem_CreatesLazilyAndKeepsOrder() {
	ctx := context.Background()
	userID := uuid.New()

	p, err := s.repo.PushItem(ctx, userID, profile.CollectionSkills, skill("a", "Languages", "Python"))
	s.Require().NoError(err)
	s.Equal(int64(1), p.Version)

	p, err = s.repo.PushItem(ctx, userID, profile.CollectionSkills, skill("b", "Languages", "Go"))
	s.Require().NoError(err)
	s.Equal(int64(2), p.Version)
	s.Equal([]string{"a", "b"}, skillIDs(p))

	again, err := s.repo.GetOrCreate(ctx, userID)
	s.Require().NoError(err)
	s.Equal(p.ID, again.ID)
	s.Len(again.Skills, 2)
	s.Empty(again.Experience)
}

func (s *profileRepoContract) Test_ReplaceItem_InPlace() {
	ctx := context.Background()
	userID := uuid.New()
	p := s.seedSkills(userID, "a", "b", "c")

	updated, err := s.repo.ReplaceItem(ctx, userID, profile.CollectionSkills, "b", skill("b", "Tools", "Docker"), p.Version)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b", "c"}, skillIDs(updated))
	s.Equal("Docker", updated.Skills[1].Name)
	s.Equal("a", updated.Skills[0].Name)
	s.Equal(p.Version+1, updated.Version)

	_, err = s.repo.ReplaceItem(ctx, userID, profile.CollectionSkills, "b", skill("b", "Tools", "Podman"), p.Version)
	s.ErrorIs(err, apperror.ErrConflict)

	_, err = s.repo.ReplaceItem(ctx, userID, profile.CollectionSkills, "zz", skill("zz", "Tools", "Make"), 0)
	s.True(apperror.IsNotFound(err, apperror.ResourceItem))

	_, err = s.repo.ReplaceItem(ctx, uuid.New(), profile.CollectionSkills, "b", skill("b", "Tools", "Make"), 0)
	s.True(apperror.IsNotFound(err, apperror.ResourceProfile))
}

func (s *profileRepoContract) Test_PullItem() {
	ctx := context.Background()
	userID := uuid.New()
	p := s.seedSkills(userID, "a", "b", "c")

	after, removed, err := s.repo.PullItem(ctx, userID, profile.CollectionSkills, "b")
	s.Require().NoError(err)
	s.True(removed)
	s.Equal([]string{"a", "c"}, skillIDs(after))
	s.Equal(p.Version+1, after.Version)

	same, removed, err := s.repo.PullItem(ctx, userID, profile.CollectionSkills, "b")
	s.Require().NoError(err)
	s.False(removed)
	s.Equal(after.Version, same.Version)
	s.Equal([]string{"a", "c"}, skillIDs(same))

	_, _, err = s.repo.PullItem(ctx, uuid.New(), profile.CollectionSkills, "b")
	s.True(apperror.IsNotFound(err, apperror.ResourceProfile))
}

func (s *profileRepoContract) Test_ReplaceCollection() {
	ctx := context.Background()
	userID := uuid.New()
	p := s.seedSkills(userID, "a", "b")

	reordered, err := s.repo.ReplaceCollection(ctx, userID, profile.CollectionSkills,
		[]profile.Record{&p.Skills[1], &p.Skills[0]}, p.Version)
	s.Require().NoError(err)
	s.Equal([]string{"b", "a"}, skillIDs(reordered))

	_, err = s.repo.ReplaceCollection(ctx, userID, profile.CollectionSkills,
		[]profile.Record{&p.Skills[0], &p.Skills[1]}, p.Version)
	s.ErrorIs(err, apperror.ErrConflict)

	current, err := s.repo.GetByUserID(ctx, userID)
	s.Require().NoError(err)
	s.Equal([]string{"b", "a"}, skillIDs(current))
}

func (s *profileRepoContract) Test_SetImage() {
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.repo.SetImage(ctx, userID, nil)
	s.True(apperror.IsNotFound(err, apperror.ResourceProfile))

	img := &profile.Image{URL: "https://cdn.example.com/a.png", PublicID: "users/a", ContentType: "image/png"}
	p, err := s.repo.SetImage(ctx, userID, img)
	s.Require().NoError(err)
	s.Require().NotNil(p.Image)
	s.Equal("users/a", p.Image.PublicID)
	s.Equal(int64(1), p.Version)

	cleared, err := s.repo.SetImage(ctx, userID, nil)
	s.Require().NoError(err)
	s.Nil(cleared.Image)
	s.Equal(p.Version+1, cleared.Version)
}

func (s *profileRepoContract) Test_SetImageThumbnail_OnlyForCurrentImage() {
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.repo.SetImageThumbnail(ctx, userID, "users/a", "https://cdn.example.com/thumb/a.png")
	s.True(apperror.IsNotFound(err, apperror.ResourceProfile))

	first, err := s.repo.SetImage(ctx, userID, &profile.Image{URL: "https://cdn.example.com/a.png", PublicID: "users/a", ContentType: "image/png"})
	s.Require().NoError(err)
	replaced, err := s.repo.SetImage(ctx, userID, &profile.Image{URL: "https://cdn.example.com/b.png", PublicID: "users/b", ContentType: "image/png"})
	s.Require().NoError(err)
	s.Equal(first.Version+1, replaced.Version)

	_, err = s.repo.SetImageThumbnail(ctx, userID, "users/a", "https://cdn.example.com/thumb/a.png")
	s.True(apperror.IsNotFound(err, apperror.ResourceImage), "a thumbnail for a replaced image is refused")

	current, err := s.repo.GetByUserID(ctx, userID)
	s.Require().NoError(err)
	s.Equal("users/b", current.Image.PublicID)
	s.Empty(current.Image.ThumbnailURL)

	p, err := s.repo.SetImageThumbnail(ctx, userID, "users/b", "https://cdn.example.com/thumb/b.png")
	s.Require().NoError(err)
	s.Equal("users/b", p.Image.PublicID)
	s.Equal("https://cdn.example.com/b.png", p.Image.URL)
	s.Equal("https://cdn.example.com/thumb/b.png", p.Image.ThumbnailURL)
	s.Equal(replaced.Version, p.Version)
	s.False(p.UpdatedAt.Before(replaced.UpdatedAt))

	_, err = s.repo.SetImage(ctx, userID, nil)
	s.Require().NoError(err)
	_, err = s.repo.SetImageThumbnail(ctx, userID, "users/b", "https://cdn.example.com/thumb/b.png")
	s.True(apperror.IsNotFound(err, apperror.ResourceImage))
}

func (s *profileRepoContract) Test_ConcurrentPushesAreNotLost() {
	ctx := context.Background()
	userID := uuid.New()
	_, err := s.repo.GetOrCreate(ctx, userID)
	s.Require().NoError(err)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := profile.CollectionSkills
			var rec profile.Record = skill(uuid.NewString(), "Languages", "L")
			if i%2 == 1 {
				c = profile.CollectionEducation
				rec = &profile.Education{ItemID: uuid.NewString(), University: "U", Degree: "D"}
			}
			_, err := s.repo.PushItem(ctx, userID, c, rec)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	p, err := s.repo.GetByUserID(ctx, userID)
	s.Require().NoError(err)
	s.Len(p.Skills, writers/2)
	s.Len(p.Education, writers/2)
	s.Equal(int64(1+writers), p.Version)
}
