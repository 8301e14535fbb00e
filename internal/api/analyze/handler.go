package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/logger"
	"github.com/futig/blueprint-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	msgMissingInput      = "Please provide an image, text, or both"
	msgMissingCredential = "API key not configured"
	msgAnalyzeFailed     = "Failed to analyze image"
)

type Handler struct {
	usecase   PlanUsecase
	validator ImageValidator
}

func NewHandler(usecase PlanUsecase, validator ImageValidator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// AnalyzeHouse handles POST /api/analyze-house.
// Accepts multipart (image, text) or JSON {"prompt"} and answers {"steps"}.
func (h *Handler) AnalyzeHouse(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AnalyzeHouse")

	if err := h.usecase.CheckCredential(); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	req, err := h.parseRequest(ctx, w, r)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "analyzing request",
		zap.Bool("has_image", req.HasImage()),
		zap.Int("text_length", len(req.Text)),
		zap.Bool("blueprint", req.IsBlueprintRequest()),
	)

	steps, err := h.usecase.Analyze(ctx, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.AnalyzeResponse{Steps: steps})
}

// parseRequest reads the body according to its content type. Any other
// content type yields an empty request, rejected later as missing input.
func (h *Handler) parseRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*entity.AnalyzeRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())
		if err := r.ParseMultipartForm(h.validator.MaxUploadSize()); err != nil {
			ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
			return nil, errors.Join(entity.ErrInvalidFormat, err)
		}

		req := &entity.AnalyzeRequest{Text: r.FormValue("text")}

		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			img, err := h.validator.ReadImage(files[0])
			if err != nil {
				return nil, err
			}
			req.Image = img
		}
		return req, nil

	case "application/json":
		var body entity.AnalyzeJSONRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
			return nil, errors.Join(entity.ErrInvalidFormat, err)
		}
		return &entity.AnalyzeRequest{Text: body.Prompt}, nil

	default:
		return &entity.AnalyzeRequest{}, nil
	}
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var upstream *entity.UpstreamError

	switch {
	case errors.Is(err, entity.ErrMissingCredential):
		ctxzap.Error(ctx, "completion API key is not configured")
		response.Error(w, http.StatusInternalServerError, msgMissingCredential)
	case errors.Is(err, entity.ErrMissingInput):
		ctxzap.Warn(ctx, "neither image nor text provided")
		response.Error(w, http.StatusBadRequest, msgMissingInput)
	case errors.Is(err, entity.ErrInvalidFormat):
		response.Error(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, entity.ErrFileTooLarge), errors.Is(err, entity.ErrInvalidMediaType), errors.Is(err, entity.ErrInvalidFile):
		ctxzap.Warn(ctx, "image rejected", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		ctxzap.Error(ctx, "completion API failed",
			zap.Int("status", upstream.StatusCode),
			zap.String("message", upstream.Message),
		)
		message := upstream.Message
		if message == "" {
			message = msgAnalyzeFailed
		}
		response.ErrorWithDetails(w, http.StatusInternalServerError, message, upstream.Details())
	default:
		ctxzap.Error(ctx, "analyze failed", zap.Error(err))
		message := err.Error()
		if message == "" {
			message = msgAnalyzeFailed
		}
		response.Error(w, http.StatusInternalServerError, message)
	}
}
