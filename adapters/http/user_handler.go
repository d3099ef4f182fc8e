package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userUC "github.com/khoahotran/resume-builder/internal/application/usecase/user"
)

type UserHandler struct {
	detailsUseCase *userUC.DetailsUseCase
}

func NewUserHandler(uc *userUC.DetailsUseCase) *UserHandler {
	return &UserHandler{detailsUseCase: uc}
}

// GetDetails reads the identity record, not the profile.
func (h *UserHandler) GetDetails(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.detailsUseCase.Execute(c.Request.Context(), userUC.GetDetailsInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detailsResponse{Success: true, User: output.Details})
}
