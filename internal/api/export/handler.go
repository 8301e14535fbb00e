package export

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/formatter"
	"github.com/futig/blueprint-backend/internal/pkg/logger"
	"github.com/futig/blueprint-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxExportBody bounds the JSON body; generated texts are far below it
const maxExportBody = 4 << 20

type Handler struct {
	formatters FormatterFactory
	now        func() time.Time
}

func NewHandler(formatters FormatterFactory) *Handler {
	return &Handler{
		formatters: formatters,
		now:        time.Now,
	}
}

// Export handles POST /api/export and returns the text as a downloadable file
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")

	var req entity.ExportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExportBody)).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		response.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Kind == "" {
		req.Kind = entity.ResultKindPlan
	}
	if !req.Kind.IsValid() {
		response.Error(w, http.StatusBadRequest, "kind must be one of: plan, blueprints")
		return
	}
	if req.Format == "" {
		req.Format = entity.FormatText
	}

	f, err := h.formatters.Create(req.Format)
	if err != nil {
		ctxzap.Warn(ctx, "unsupported export format", zap.String("format", string(req.Format)))
		response.Error(w, http.StatusBadRequest, "format must be one of: txt, md, pdf, docx")
		return
	}

	data, err := f.Format(&entity.PlanResult{Kind: req.Kind, Text: req.Text})
	if err != nil {
		ctxzap.Error(ctx, "failed to render export", zap.Error(err), zap.String("format", string(req.Format)))
		response.Error(w, http.StatusInternalServerError, "failed to render document")
		return
	}

	filename := formatter.Filename(req.Kind, f, h.now().UnixMilli())
	ctxzap.Info(ctx, "exporting result",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)

	response.Attachment(w, f.ContentType(), filename, data)
}
