package user

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

var tracer = otel.Tracer("user_usecase")

// DetailsUseCase reads the identity record, never the profile.
type DetailsUseCase struct {
	userRepo user.Repository
	logger   logger.Logger
}

func NewDetailsUseCase(repo user.Repository, log logger.Logger) *DetailsUseCase {
	return &DetailsUseCase{userRepo: repo, logger: log}
}

type GetDetailsInput struct {
	UserID uuid.UUID
}

type GetDetailsOutput struct {
	Details user.Details
}

func (uc *DetailsUseCase) Execute(ctx context.Context, input GetDetailsInput) (*GetDetailsOutput, error) {
	ctx, span := tracer.Start(ctx, "GetDetails")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	u, err := uc.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &GetDetailsOutput{Details: u.Details()}, nil
}
