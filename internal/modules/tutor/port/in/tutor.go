package in

import (
	"context"

	"robotutor/internal/modules/tutor/dto"
)

type Usecase interface {
	// Teach runs a session to completion, resuming an open one when it
	// exists. A stalled run returns apperrors.ErrSessionStalled with the
	// session persisted at its last finished stage.
	Teach(ctx context.Context, input dto.TeachInput) (dto.TeachOutput, error)
}
