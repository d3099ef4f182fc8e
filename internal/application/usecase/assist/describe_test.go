package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(DescribeInput{Kind: KindExperience, JobTitle: "Backend Engineer", Organization: "Acme", JobDescription: "Go services"})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Backend Engineer" at "Acme"`)
	assert.Contains(t, prompt, "Go services")
	assert.Contains(t, prompt, `"* "`)

	prompt, err = BuildPrompt(DescribeInput{Kind: KindInvolvement, Organization: "ACM", Role: "Treasurer"})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Treasurer" in "ACM"`)

	_, err = BuildPrompt(DescribeInput{Kind: KindProject})
	assert.EqualError(t, err, "projectName is required")

	_, err = BuildPrompt(DescribeInput{Kind: "hobby"})
	assert.Error(t, err)
}

func TestCleanOutput(t *testing.T) {
	assert.Equal(t, "* Built **Go** APIs", CleanOutput("```markdown\n* Built **Go** APIs\n```"))
	assert.Equal(t, "* Led a team", CleanOutput("  * Led a team \n"))
	assert.Equal(t, "", CleanOutput("```\n```"))
}

func TestDescribeUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	input := DescribeInput{Kind: KindProject, ProjectName: "resume builder"}

	llm := new(MockLLM)
	llm.On("GenerateText", mock.Anything, mock.AnythingOfType("string")).Return("```\n* Shipped **v1**\n```", nil).Once()

	out, err := NewDescribeUseCase(llm, logger.NewNop()).Execute(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "* Shipped **v1**", out.Description)
	llm.AssertExpectations(t)

	failing := new(MockLLM)
	failing.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("model offline"))
	_, err = NewDescribeUseCase(failing, logger.NewNop()).Execute(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	empty := new(MockLLM)
	empty.On("GenerateText", mock.Anything, mock.Anything).Return("   ", nil)
	_, err = NewDescribeUseCase(empty, logger.NewNop()).Execute(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	_, err = NewDescribeUseCase(nil, logger.NewNop()).Execute(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	_, err = NewDescribeUseCase(llm, logger.NewNop()).Execute(ctx, DescribeInput{Kind: KindExperience})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
