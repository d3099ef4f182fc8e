package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/resume-builder/adapters/ws"
	profileUC "github.com/khoahotran/resume-builder/internal/application/usecase/profile"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	imageUseCase   *profileUC.ImageUseCase
	wsHandler      *ws.Handler
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, imageUC *profileUC.ImageUseCase, wsHandler *ws.Handler, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		imageUseCase:   imageUC,
		wsHandler:      wsHandler,
		logger:         log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, output.Profile)
	c.JSON(http.StatusOK, output.Profile)
}

func (h *ProfileHandler) GetOrCreateProfile(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.profileUseCase.ExecuteGetOrCreate(c.Request.Context(), profileUC.GetProfileInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, output.Profile)
	c.JSON(http.StatusOK, output.Profile)
}

func (h *ProfileHandler) GetResume(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.profileUseCase.ExecuteGetResume(c.Request.Context(), profileUC.GetProfileInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("ETag", etag(output.Version))
	c.JSON(http.StatusOK, output.Resume)
}

func (h *ProfileHandler) UploadImage(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart field 'file' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInvalidInput("cannot read uploaded file", err))
		return
	}
	defer file.Close()

	output, err := h.imageUseCase.ExecuteUpload(c.Request.Context(), profileUC.UploadImageInput{
		UserID:      userID,
		File:        file,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, output.Profile)
	c.JSON(http.StatusOK, output.Image)
}

func (h *ProfileHandler) GetImage(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.imageUseCase.ExecuteGet(c.Request.Context(), profileUC.GetProfileInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, output.Profile)
	c.JSON(http.StatusOK, output.Image)
}

func (h *ProfileHandler) DeleteImage(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.imageUseCase.ExecuteDelete(c.Request.Context(), profileUC.GetProfileInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	setVersion(c, output.Profile)
	c.JSON(http.StatusOK, output.Profile)
}

// Subscribe upgrades to a websocket that streams the owner's profile events.
func (h *ProfileHandler) Subscribe(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if h.wsHandler == nil {
		c.Error(apperror.NewInternal("live updates are not enabled", nil))
		return
	}
	h.wsHandler.Serve(c.Writer, c.Request, userID)
}
