package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

type loginRequest struct {
	// Identifier accepts a username or an email; Email and Username are
	// aliases kept for older clients.
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

func (r loginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type toggleRequest struct {
	Field profile.Flag `json:"field" binding:"required"`
	Value *bool        `json:"value"`
}

type describeRequest struct {
	Kind           string `json:"kind" binding:"required"`
	JobTitle       string `json:"jobTitle"`
	Organization   string `json:"organization"`
	Role           string `json:"role"`
	ProjectName    string `json:"projectName"`
	JobDescription string `json:"jobDescription"`
}

type detailsResponse struct {
	Success bool         `json:"success"`
	User    user.Details `json:"user"`
}

func etag(version int64) string {
	return fmt.Sprintf("%q", strconv.FormatInt(version, 10))
}

func setVersion(c *gin.Context, p *profile.Profile) {
	if p != nil {
		c.Header("ETag", etag(p.Version))
	}
}

// expectedVersion reads If-Match. A missing header or "*" means
// unconditional.
func expectedVersion(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, apperror.NewInvalidInput("If-Match must carry a profile version", err)
	}
	return v, nil
}

// pathUserID is safe after RequireProfileOwner has run.
func pathUserID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return uuid.Nil, apperror.NewInvalidInput("userID must be a UUID", err)
	}
	return id, nil
}
