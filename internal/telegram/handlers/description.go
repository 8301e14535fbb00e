package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/validator"
	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	"github.com/futig/blueprint-backend/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const defaultPhotoName = "photo.jpg"

// DescriptionHandler takes the free-text description and the optional photo of step 2
type DescriptionHandler struct {
	BaseHandler
	files     FileDownloader
	validator ImageValidator
}

func NewDescriptionHandler(
	sender *MessageSender,
	stateManager *state.Manager,
	kb *keyboard.Builder,
	files FileDownloader,
	imageValidator ImageValidator,
) *DescriptionHandler {
	return &DescriptionHandler{
		BaseHandler: newBaseHandler(HandlerStateDescription, sender, stateManager, kb),
		files:       files,
		validator:   imageValidator,
	}
}

// Handle stores the description, or attaches the photo and uses its caption as description
func (h *DescriptionHandler) Handle(ctx context.Context, msg *Message) error {
	var img *entity.Image
	if msg.HasImage() {
		var err error
		img, err = h.readImage(ctx, msg)
		if err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return nil
		}
		ctxzap.Info(ctx, "image received",
			zap.String("media_type", img.MediaType),
			zap.Int("size", len(img.Data)),
		)
	}

	w, err := h.stateManager.Update(ctx, msg.UserID, func(w *wizard.Wizard) error {
		if img != nil {
			if err := w.AttachImage(img); err != nil {
				return err
			}
		}
		if text := firstNonBlank(msg.Text, msg.Caption); text != "" {
			return w.SetDescription(text)
		}
		return nil
	})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.presenter.ShowStep(ctx, msg.ChatID, w)
}

func (h *DescriptionHandler) readImage(ctx context.Context, msg *Message) (*entity.Image, error) {
	maxSize := h.validator.MaxImageSize()

	var fileID, declaredType, filename string
	var size int64
	if msg.Document != nil {
		fileID = msg.Document.FileID
		declaredType = msg.Document.MimeType
		filename = msg.Document.FileName
		size = int64(msg.Document.FileSize)
	} else {
		photo := pickPhoto(msg.Photo, maxSize)
		fileID = photo.FileID
		filename = defaultPhotoName
		size = int64(photo.FileSize)
	}

	if size > maxSize {
		return nil, fmt.Errorf("%w: image is %d bytes (max %d)", entity.ErrFileTooLarge, size, maxSize)
	}

	data, contentType, err := h.files.Download(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if declaredType == "" {
		declaredType = contentType
	}

	return h.validator.ValidateImage(data, declaredType, validator.SanitizeFilename(filename))
}

// pickPhoto returns the largest photo size within maxSize. Sizes arrive smallest first.
func pickPhoto(sizes []tgbotapi.PhotoSize, maxSize int64) tgbotapi.PhotoSize {
	for i := len(sizes) - 1; i >= 0; i-- {
		if int64(sizes[i].FileSize) <= maxSize {
			return sizes[i]
		}
	}
	return sizes[0]
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
