package analyze

import (
	"context"
	"mime/multipart"

	"github.com/futig/blueprint-backend/internal/entity"
)

type PlanUsecase interface {
	CheckCredential() error
	Analyze(ctx context.Context, req *entity.AnalyzeRequest) (string, error)
}

type ImageValidator interface {
	MaxUploadSize() int64
	ReadImage(fh *multipart.FileHeader) (*entity.Image, error)
}
