package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/auth"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func TestLoginUseCase_Execute(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	ada := &user.User{ID: uuid.New(), Email: "ada@example.com", Username: "ada", PasswordHash: hash}
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)

	tests := []struct {
		name      string
		input     LoginInput
		mockSetup func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:  "login with username",
			input: LoginInput{Identifier: "ada", Password: "correct-horse"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "ada").Return(ada, nil)
			},
		},
		{
			name:  "login with email is case insensitive",
			input: LoginInput{Identifier: " Ada@Example.com ", Password: "correct-horse"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(ada, nil)
			},
		},
		{
			name:      "missing password",
			input:     LoginInput{Identifier: "ada"},
			mockSetup: func(*MockUserRepository) {},
			wantErr:   apperror.ErrInvalidInput,
		},
		{
			name:  "unknown user",
			input: LoginInput{Identifier: "grace", Password: "whatever"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "grace").
					Return(nil, apperror.NewNotFound(apperror.ResourceUser, "grace"))
			},
			wantErr: apperror.ErrUnauthorized,
		},
		{
			name:  "wrong password",
			input: LoginInput{Identifier: "ada", Password: "battery-staple"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "ada").Return(ada, nil)
			},
			wantErr: apperror.ErrUnauthorized,
		},
		{
			name:  "storage failure is not hidden",
			input: LoginInput{Identifier: "ada", Password: "correct-horse"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("FindByUsername", mock.Anything, "ada").
					Return(nil, apperror.NewPersistence("failed to query user", errors.New("connection reset")))
			},
			wantErr: apperror.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.mockSetup(repo)
			uc := NewLoginUseCase(repo, jwtSvc, logger.NewNop())

			out, err := uc.Execute(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, out)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, ada.ID.String(), out.UserID)
			claims, err := jwtSvc.ValidateToken(out.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, ada.ID, claims.OwnerID)
			repo.AssertExpectations(t)
		})
	}
}
