package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/resume-builder/adapters/persistence"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

func TestDetailsUseCase(t *testing.T) {
	ada := user.User{
		ID:           uuid.New(),
		Email:        "Ada@Example.com",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
	}
	uc := NewDetailsUseCase(persistence.NewMemoryUserRepo(ada), logger.NewNop())

	out, err := uc.Execute(context.Background(), GetDetailsInput{UserID: ada.ID})
	require.NoError(t, err)
	assert.Equal(t, user.Details{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Username: "ada"}, out.Details)

	_, err = uc.Execute(context.Background(), GetDetailsInput{UserID: uuid.New()})
	assert.True(t, apperror.IsNotFound(err, apperror.ResourceUser))
}
