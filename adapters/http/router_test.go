package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/resume-builder/adapters/persistence"
	assistUC "github.com/khoahotran/resume-builder/internal/application/usecase/assist"
	authUC "github.com/khoahotran/resume-builder/internal/application/usecase/auth"
	profileUC "github.com/khoahotran/resume-builder/internal/application/usecase/profile"
	userUC "github.com/khoahotran/resume-builder/internal/application/usecase/user"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/auth"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type staticLLM struct{ text string }

func (l staticLLM) GenerateText(context.Context, string) (string, error) { return l.text, nil }

type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	jwtSvc *auth.JWTService
	owner  user.User
	token  string
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	hash, err := auth.HashPassword("secret-password")
	s.Require().NoError(err)
	s.owner = user.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: hash,
	}

	users := persistence.NewMemoryUserRepo(s.owner)
	deps := profileUC.ManagerDeps{
		Profiles: persistence.NewMemoryProfileRepo(),
		Users:    users,
		Locker:   persistence.NewLocalLocker(),
		Logger:   log,
	}
	s.jwtSvc = auth.NewJWTService("router-test-secret", time.Hour)

	s.router = NewRouter(Handlers{
		Auth:    NewAuthHandler(authUC.NewLoginUseCase(users, s.jwtSvc, log)),
		Profile: NewProfileHandler(profileUC.NewProfileUseCase(deps), profileUC.NewImageUseCase(deps, nil, 0), nil, log),
		User:    NewUserHandler(userUC.NewDetailsUseCase(users, log)),
		Assist:  NewAssistHandler(assistUC.NewDescribeUseCase(staticLLM{text: "```\n* Built **Go** services\n```"}, log)),
	}, NewSectionHandlers(deps), s.jwtSvc, log)

	s.token, err = s.jwtSvc.GenerateToken(s.owner.ID, s.owner.Username)
	s.Require().NoError(err)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *RouterTestSuite) path(format string, args ...any) string {
	return fmt.Sprintf("/api/userprofile/%s", s.owner.ID) + fmt.Sprintf(format, args...)
}

func (s *RouterTestSuite) decodeProfile(rr *httptest.ResponseRecorder) profile.Profile {
	var p profile.Profile
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func (s *RouterTestSuite) TestLogin() {
	rr := s.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ada", "password": "secret-password"})
	s.Equal(http.StatusOK, rr.Code)

	var body map[string]string
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	claims, err := s.jwtSvc.ValidateToken(body["access_token"])
	s.Require().NoError(err)
	s.Equal(s.owner.ID, claims.OwnerID)

	rr = s.do(http.MethodPost, "/api/auth/login", gin.H{"identifier": "ADA@example.com", "password": "nope"})
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *RouterTestSuite) TestRejectsMissingAndForeignTokens() {
	req := httptest.NewRequest(http.MethodGet, s.path("/skill"), nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, fmt.Sprintf("/api/userprofile/%s/skill", uuid.New()), nil)
	s.Equal(http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/api/userprofile/not-a-uuid/skill", nil)
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *RouterTestSuite) TestDetails() {
	rr := s.do(http.MethodGet, fmt.Sprintf("/api/userprofile/details/%s", s.owner.ID), nil)
	s.Require().Equal(http.StatusOK, rr.Code)

	var body detailsResponse
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.True(body.Success)
	s.Equal(user.Details{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Username: "ada"}, body.User)
}

func (s *RouterTestSuite) TestListBeforeProfileExists() {
	rr := s.do(http.MethodGet, s.path("/skill"), nil)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Contains(rr.Body.String(), "UserProfile not found")
}

func (s *RouterTestSuite) TestSkillScenario() {
	rr := s.do(http.MethodPost, s.path("/skill"), gin.H{"domain": "Languages", "name": "Python"})
	s.Require().Equal(http.StatusCreated, rr.Code)
	s.Equal(`"1"`, rr.Header().Get("ETag"))
	first := s.decodeProfile(rr)
	s.Require().Len(first.Skills, 1)
	s.True(first.Skills[0].IncludeInResume)
	s1 := first.Skills[0].ItemID
	s.Equal(s1, rr.Header().Get("X-Item-Id"))

	rr = s.do(http.MethodPost, s.path("/skill"), gin.H{"domain": "Languages", "name": "Go"})
	s.Require().Equal(http.StatusCreated, rr.Code)
	second := s.decodeProfile(rr)
	s.Require().Len(second.Skills, 2)
	s2 := second.Skills[1].ItemID

	rr = s.do(http.MethodPut, s.path("/skills/reorder"), gin.H{"skills": []profile.Skill{second.Skills[1], second.Skills[0]}})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, s.path("/skill"), nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var listed []profile.Skill
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &listed))
	s.Require().Len(listed, 2)
	s.Equal([]string{s2, s1}, []string{listed[0].ItemID, listed[1].ItemID})

	rr = s.do(http.MethodDelete, s.path("/skill/%s", s1), nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	after := s.decodeProfile(rr)
	s.Require().Len(after.Skills, 1)
	s.Equal(s2, after.Skills[0].ItemID)

	rr = s.do(http.MethodDelete, s.path("/skill/%s", s1), nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(after.Version, s.decodeProfile(rr).Version)
}

func (s *RouterTestSuite) TestReorderIgnoresExtraKeys() {
	rr := s.do(http.MethodPost, s.path("/skill"), gin.H{"domain": "Languages", "name": "Python"})
	s.Require().Equal(http.StatusCreated, rr.Code)
	rr = s.do(http.MethodPost, s.path("/skill"), gin.H{"domain": "Languages", "name": "Go"})
	s.Require().Equal(http.StatusCreated, rr.Code)
	created := s.decodeProfile(rr)

	rr = s.do(http.MethodPut, s.path("/skills/reorder"), gin.H{
		"skills": []profile.Skill{created.Skills[1], created.Skills[0]},
		"meta":   gin.H{"source": "drag-and-drop"},
		"count":  2,
	})
	s.Require().Equal(http.StatusOK, rr.Code)
	reordered := s.decodeProfile(rr)
	s.Equal(created.Skills[1].ItemID, reordered.Skills[0].ItemID)

	rr = s.do(http.MethodPut, s.path("/skills/reorder"), gin.H{"skills": gin.H{"not": "a list"}})
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *RouterTestSuite) TestUpdateAndConflicts() {
	rr := s.do(http.MethodPost, s.path("/education"), gin.H{"university": "MIT", "degree": "BSc"})
	s.Require().Equal(http.StatusCreated, rr.Code)
	created := s.decodeProfile(rr)
	itemID := created.Education[0].ItemID

	rr = s.do(http.MethodPut, s.path("/education/%s", itemID), gin.H{"university": "MIT", "degree": "MSc"}, "If-Match", etag(created.Version))
	s.Require().Equal(http.StatusOK, rr.Code)
	updated := s.decodeProfile(rr)
	s.Equal("MSc", updated.Education[0].Degree)
	s.Equal(itemID, updated.Education[0].ItemID)

	rr = s.do(http.MethodPut, s.path("/education/%s", itemID), gin.H{"university": "MIT", "degree": "PhD"}, "If-Match", etag(created.Version))
	s.Equal(http.StatusConflict, rr.Code)

	rr = s.do(http.MethodPut, s.path("/education/missing"), gin.H{"university": "MIT", "degree": "PhD"})
	s.Equal(http.StatusNotFound, rr.Code)
	s.Contains(rr.Body.String(), "Item not found")

	rr = s.do(http.MethodPut, s.path("/education/%s", itemID), gin.H{"university": "MIT", "degree": "PhD"}, "If-Match", "abc")
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *RouterTestSuite) TestValidationErrors() {
	rr := s.do(http.MethodPost, s.path("/experience"), gin.H{"company": "Acme"})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Contains(rr.Body.String(), "jobTitle is required")

	rr = s.do(http.MethodPost, s.path("/skill"), gin.H{"domain": "Languages", "name": "Go"})
	s.Require().Equal(http.StatusCreated, rr.Code)

	rr = s.do(http.MethodPut, s.path("/skills/reorder"), gin.H{"skill": []any{}})
	s.Equal(http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPut, s.path("/skills/reorder"), gin.H{"skills": []any{}})
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *RouterTestSuite) TestToggle() {
	rr := s.do(http.MethodPost, s.path("/project"), gin.H{"name": "Compiler", "isPresent": true})
	s.Require().Equal(http.StatusCreated, rr.Code)
	itemID := s.decodeProfile(rr).Projects[0].ItemID

	rr = s.do(http.MethodPatch, s.path("/project/%s/toggle", itemID), gin.H{"field": "includeInResume"})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.False(s.decodeProfile(rr).Projects[0].IncludeInResume)

	rr = s.do(http.MethodPatch, s.path("/project/%s/toggle", itemID), gin.H{"field": "isPresent", "value": false})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.False(s.decodeProfile(rr).Projects[0].IsPresent)

	rr = s.do(http.MethodPatch, s.path("/project/%s/toggle", itemID), gin.H{"field": "name"})
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *RouterTestSuite) TestProfileAndResume() {
	rr := s.do(http.MethodPost, s.path(""), nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(int64(1), s.decodeProfile(rr).Version)

	rr = s.do(http.MethodPost, s.path("/summary"), gin.H{"content": "Engineer"})
	s.Require().Equal(http.StatusCreated, rr.Code)

	rr = s.do(http.MethodGet, s.path(""), nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Len(s.decodeProfile(rr).Summary, 1)

	rr = s.do(http.MethodGet, s.path("/resume"), nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "Engineer")
	s.Equal(`"2"`, rr.Header().Get("ETag"))
}

func (s *RouterTestSuite) TestImageWithoutStorage() {
	rr := s.do(http.MethodGet, s.path("/image"), nil)
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *RouterTestSuite) TestDescribe() {
	rr := s.do(http.MethodPost, s.path("/ai/description"), gin.H{"kind": "experience", "jobTitle": "Engineer"})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"description":"* Built **Go** services"}`, rr.Body.String())

	rr = s.do(http.MethodPost, s.path("/ai/description"), gin.H{"kind": "experience"})
	s.Equal(http.StatusBadRequest, rr.Code)
}
