package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", NewNotFound(ResourceUser, "u1"), http.StatusNotFound},
		{"item not found", NewNotFound(ResourceItem, "i1"), http.StatusNotFound},
		{"validation", NewValidation("education", errors.New("university is required")), http.StatusBadRequest},
		{"version conflict", NewVersionConflict(ResourceProfile, 3), http.StatusConflict},
		{"persistence", NewPersistence("push failed", errors.New("conn reset")), http.StatusInternalServerError},
		{"unauthorized", NewUnauthorized("bad password", nil), http.StatusUnauthorized},
		{"forbidden", NewPermissionDenied("not owner"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("list failed: %w", NewNotFound(ResourceProfile, "u1")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewNotFound(ResourceProfile, "abc"))

	assert.True(t, IsNotFound(err, ResourceProfile))
	assert.True(t, IsNotFound(err, ""))
	assert.False(t, IsNotFound(err, ResourceUser))
	assert.False(t, IsNotFound(NewPersistence("x", nil), ""))
}

func TestAppError_ToJSONHidesCause(t *testing.T) {
	err := NewPersistence("failed to push item", errors.New("dial tcp 10.0.0.1:5432: refused"))

	body := err.ToJSON()

	assert.Equal(t, "persistence failure", body["error"])
	assert.Equal(t, "A storage error occurred", body["message"])
	assert.NotContains(t, fmt.Sprint(body), "10.0.0.1")
}
