package plan

import (
	"context"

	"github.com/futig/blueprint-backend/internal/entity"
)

type CompletionConnector interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResponse, error)
}
