package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/application/service"
	"github.com/khoahotran/resume-builder/pkg/apperror"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

type Kind string

const (
	KindExperience  Kind = "experience"
	KindInvolvement Kind = "involvement"
	KindProject     Kind = "project"
)

var tracer = otel.Tracer("assist_usecase")

// DescribeUseCase drafts the description of an experience, involvement or
// project entry. A nil llm disables the feature.
type DescribeUseCase struct {
	llm    service.LLMService
	logger logger.Logger
}

func NewDescribeUseCase(llm service.LLMService, log logger.Logger) *DescribeUseCase {
	return &DescribeUseCase{llm: llm, logger: log}
}

type DescribeInput struct {
	Kind           Kind
	JobTitle       string
	Organization   string
	Role           string
	ProjectName    string
	JobDescription string
}

type DescribeOutput struct {
	Description string
}

func (uc *DescribeUseCase) Execute(ctx context.Context, input DescribeInput) (*DescribeOutput, error) {
	ctx, span := tracer.Start(ctx, "Describe")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(input.Kind)))

	prompt, err := BuildPrompt(input)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewValidation("description", err)
	}

	if uc.llm == nil {
		return nil, apperror.NewInternal("AI text generation is not configured", nil)
	}

	raw, err := uc.llm.GenerateText(ctx, prompt)
	if err != nil {
		uc.logger.Error("LLM description request failed", err, zap.String("kind", string(input.Kind)))
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to generate description", err)
	}

	text := CleanOutput(raw)
	if text == "" {
		err := apperror.NewInternal("model returned an empty description", nil)
		span.RecordError(err)
		return nil, err
	}
	return &DescribeOutput{Description: text}, nil
}

// BuildPrompt asks for resume bullets using the "*" and "**" markup the
// editor understands.
func BuildPrompt(input DescribeInput) (string, error) {
	var subject string
	switch input.Kind {
	case KindExperience:
		if strings.TrimSpace(input.JobTitle) == "" {
			return "", errors.New("jobTitle is required")
		}
		subject = fmt.Sprintf("a work experience as %q", input.JobTitle)
		if input.Organization != "" {
			subject += fmt.Sprintf(" at %q", input.Organization)
		}
	case KindInvolvement:
		if strings.TrimSpace(input.Organization) == "" || strings.TrimSpace(input.Role) == "" {
			return "", errors.New("organization and role are required")
		}
		subject = fmt.Sprintf("an involvement as %q in %q", input.Role, input.Organization)
	case KindProject:
		if strings.TrimSpace(input.ProjectName) == "" {
			return "", errors.New("projectName is required")
		}
		subject = fmt.Sprintf("a project named %q", input.ProjectName)
	default:
		return "", fmt.Errorf("unknown kind %q", input.Kind)
	}

	var b strings.Builder
	b.WriteString("Write the resume description for ")
	b.WriteString(subject)
	b.WriteString(".\n")
	if input.JobDescription != "" {
		b.WriteString("\n--- Context ---\n")
		b.WriteString(input.JobDescription)
		b.WriteString("\n")
	}
	b.WriteString("\n--- Format ---\n")
	b.WriteString("Return 3 to 5 lines. Start each line with \"* \". ")
	b.WriteString("Wrap key technologies and metrics in **double asterisks**. ")
	b.WriteString("Return only the lines, without any introduction.")
	return b.String(), nil
}

// CleanOutput strips code fences and surrounding whitespace some models add.
func CleanOutput(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
		if nl := strings.IndexAny(clean, "\r\n"); nl >= 0 && !strings.Contains(clean[:nl], " ") {
			clean = clean[nl:]
		}
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}
