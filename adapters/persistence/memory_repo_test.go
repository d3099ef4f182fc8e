package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

type MemoryProfileRepoTestSuite struct {
	profileRepoContract
}

func (s *MemoryProfileRepoTestSuite) SetupTest() {
	s.repo = NewMemoryProfileRepo()
}

func TestMemoryProfileRepo(t *testing.T) {
	suite.Run(t, new(MemoryProfileRepoTestSuite))
}

func (s *MemoryProfileRepoTestSuite) Test_ReturnsCopies() {
	ctx := context.Background()
	userID := uuid.New()
	p := s.seedSkills(userID, "a")

	p.Skills[0].Name = "mutated"

	stored, err := s.repo.GetByUserID(ctx, userID)
	s.Require().NoError(err)
	s.Equal("a", stored.Skills[0].Name)
}

func TestMemoryUserRepo(t *testing.T) {
	ctx := context.Background()
	u := user.User{ID: uuid.New(), Email: "Ada@Example.com", Username: "ada"}
	repo := NewMemoryUserRepo(u)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = repo.FindByUsername(ctx, "grace")
	assert.True(t, apperror.IsNotFound(err, apperror.ResourceUser))
}

func TestMemoryProfileRepo_RejectsForeignRecord(t *testing.T) {
	repo := NewMemoryProfileRepo()
	userID := uuid.New()

	_, err := repo.PushItem(context.Background(), userID, profile.CollectionSkills, &profile.Education{ItemID: "x"})
	assert.ErrorIs(t, err, apperror.ErrPersistence)

	_, err = repo.GetByUserID(context.Background(), userID)
	assert.True(t, apperror.IsNotFound(err, apperror.ResourceProfile))
}
