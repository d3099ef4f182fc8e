package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/resume-builder/internal/application/usecase/profile"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/auth"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	User    *UserHandler
	Assist  *AssistHandler
}

type RouteRegistrar interface {
	Register(g *gin.RouterGroup)
}

// NewSectionHandlers builds one handler per embedded collection.
func NewSectionHandlers(deps profileUC.ManagerDeps) []RouteRegistrar {
	return []RouteRegistrar{
		NewSectionHandler(profileUC.NewCollectionManager(profile.EducationSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.ExperienceSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.ProjectSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.CertificationSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.InvolvementSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.SkillSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.ContactSection, deps)),
		NewSectionHandler(profileUC.NewCollectionManager(profile.SummarySection, deps)),
	}
}

func NewRouter(h Handlers, sections []RouteRegistrar, jwtSvc *auth.JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), ErrorMiddleware(log))
	router.MaxMultipartMemory = 8 << 20

	authMiddleware := AuthMiddleware(jwtSvc)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.POST("/auth/login", h.Auth.Login)

		userProfile := api.Group("/userprofile")
		userProfile.Use(authMiddleware)
		{
			userProfile.GET("/details/:userID", RequireProfileOwner(), h.User.GetDetails)

			owned := userProfile.Group("/:userID")
			owned.Use(RequireProfileOwner())
			{
				owned.GET("", h.Profile.GetProfile)
				owned.POST("", h.Profile.GetOrCreateProfile)
				owned.GET("/resume", h.Profile.GetResume)

				owned.PUT("/image", h.Profile.UploadImage)
				owned.GET("/image", h.Profile.GetImage)
				owned.DELETE("/image", h.Profile.DeleteImage)

				owned.GET("/ws", h.Profile.Subscribe)
				owned.POST("/ai/description", h.Assist.Describe)

				for _, s := range sections {
					s.Register(owned)
				}
			}
		}
	}

	return router
}
