package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/resume-builder/internal/application/usecase/assist"
	"github.com/khoahotran/resume-builder/pkg/apperror"
)

type AssistHandler struct {
	describeUseCase *assist.DescribeUseCase
}

func NewAssistHandler(uc *assist.DescribeUseCase) *AssistHandler {
	return &AssistHandler{describeUseCase: uc}
}

func (h *AssistHandler) Describe(c *gin.Context) {
	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for description", err))
		return
	}

	output, err := h.describeUseCase.Execute(c.Request.Context(), assist.DescribeInput{
		Kind:           assist.Kind(req.Kind),
		JobTitle:       req.JobTitle,
		Organization:   req.Organization,
		Role:           req.Role,
		ProjectName:    req.ProjectName,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"description": output.Description})
}
