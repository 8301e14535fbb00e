package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/formatter"
	"github.com/futig/blueprint-backend/internal/pkg/logger"
	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	"github.com/futig/blueprint-backend/internal/wizard"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// generateTimeout bounds one plan or blueprint generation
const generateTimeout = 4 * time.Minute

// errStale is returned when the wizard was restarted while a generation was running
var errStale = errors.New("wizard restarted during generation")

// CallbackHandler handles all callback button clicks
type CallbackHandler struct {
	BaseHandler
	bot        BotAPI
	planUC     PlanUsecase
	formatters FormatterFactory
	now        func() time.Time
	logger     *zap.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	bot BotAPI,
	sender *MessageSender,
	stateManager *state.Manager,
	kb *keyboard.Builder,
	planUC PlanUsecase,
	formatters FormatterFactory,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: newBaseHandler(HandlerStateCallback, sender, stateManager, kb),
		bot:         bot,
		planUC:      planUC,
		formatters:  formatters,
		now:         time.Now,
		logger:      logger,
	}
}

// Handle routes callback queries to appropriate actions
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	ctx = logger.WithAction(ctx, data.Action)
	ctxzap.Info(ctx, "handling callback",
		zap.String("value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch data.Action {
	case keyboard.ActionBuildingType:
		return h.handleSelection(ctx, msg, func(w *wizard.Wizard) error {
			return w.SetBuildingType(entity.BuildingType(data.Value))
		})
	case keyboard.ActionTerrain:
		return h.handleSelection(ctx, msg, func(w *wizard.Wizard) error {
			return w.SetTerrain(entity.TerrainType(data.Value))
		})
	case keyboard.ActionImage:
		return h.handleSelection(ctx, msg, func(w *wizard.Wizard) error {
			return w.RemoveImage()
		})
	case keyboard.ActionNav:
		return h.handleNavigation(ctx, msg, data.Value)
	case keyboard.ActionRun:
		return h.handleRun(ctx, msg, entity.ResultKind(data.Value))
	case keyboard.ActionDownload:
		return h.handleDownload(ctx, msg, data.Value)
	default:
		return fmt.Errorf("unknown callback action: %s", data.Action)
	}
}

// handleSelection applies a choice on the current step and redraws that step in place
func (h *CallbackHandler) handleSelection(ctx context.Context, msg *Message, apply func(w *wizard.Wizard) error) error {
	w, err := h.stateManager.Update(ctx, msg.UserID, apply)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}
	return h.presenter.Refresh(ctx, msg.ChatID, msg.MessageID, w)
}

func (h *CallbackHandler) handleNavigation(ctx context.Context, msg *Message, value string) error {
	var apply func(w *wizard.Wizard) error
	switch value {
	case keyboard.NavNext:
		apply = func(w *wizard.Wizard) error { return w.Next() }
	case keyboard.NavBack:
		apply = func(w *wizard.Wizard) error {
			w.Back()
			return nil
		}
	case keyboard.NavRestart:
		apply = func(w *wizard.Wizard) error {
			if w.Busy {
				return entity.ErrBusy
			}
			w.Reset()
			return nil
		}
	default:
		return fmt.Errorf("unknown navigation: %s", value)
	}

	w, err := h.stateManager.Update(ctx, msg.UserID, apply)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}
	return h.presenter.ShowStep(ctx, msg.ChatID, w)
}

// handleRun generates the plan or the blueprints. The wizard stays busy for the
// duration of the call so repeated clicks are rejected.
func (h *CallbackHandler) handleRun(ctx context.Context, msg *Message, kind entity.ResultKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: result kind %q", entity.ErrInvalidParameter, kind)
	}

	var (
		req  *entity.BuildRequest
		plan string
	)
	begin := func(w *wizard.Wizard) (err error) {
		if kind == entity.ResultKindPlan {
			req, err = w.BeginAnalyze()
		} else {
			plan, err = w.BeginBlueprints()
		}
		return err
	}

	w, err := h.stateManager.Update(ctx, msg.UserID, begin)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}
	wizardID := w.ID
	ctx = logger.WithWizard(ctx, wizardID)

	progress := render.MsgGeneratingPlan
	if kind == entity.ResultKindBlueprints {
		progress = render.MsgGeneratingBlueprints
	}
	h.sendMessage(ctx, msg.ChatID, progress, nil)

	callCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	typing := NewTypingNotifier(h.bot, msg.ChatID, h.logger)
	typing.Start(callCtx)

	var result *entity.PlanResult
	if kind == entity.ResultKindPlan {
		result, err = h.planUC.GeneratePlan(callCtx, req)
	} else {
		result, err = h.planUC.GenerateBlueprints(callCtx, plan)
	}
	typing.Stop()

	if err != nil {
		h.release(ctx, msg.UserID, wizardID)
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	w, err = h.stateManager.Update(ctx, msg.UserID, func(w *wizard.Wizard) error {
		if w.ID != wizardID {
			return errStale
		}
		if kind == entity.ResultKindPlan {
			w.CompletePlan(result.Text)
		} else {
			w.CompleteBlueprints(result.Text)
		}
		return nil
	})
	if errors.Is(err, errStale) {
		ctxzap.Info(ctx, "dropping result of restarted wizard", zap.String("kind", string(kind)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("store %s: %w", kind, err)
	}

	ctxzap.Info(ctx, "result generated",
		zap.String("kind", string(kind)),
		zap.Int("length", len(result.Text)),
	)

	return h.presenter.ShowStep(ctx, msg.ChatID, w)
}

// release clears the busy flag after a failed generation unless the wizard was replaced
func (h *CallbackHandler) release(ctx context.Context, userID int64, wizardID string) {
	_, err := h.stateManager.Update(ctx, userID, func(w *wizard.Wizard) error {
		if w.ID != wizardID {
			return errStale
		}
		w.Release()
		return nil
	})
	if err != nil && !errors.Is(err, errStale) {
		ctxzap.Error(ctx, "failed to release wizard", zap.Error(err))
	}
}

// handleDownload renders a stored result in the requested format and sends it as a file
func (h *CallbackHandler) handleDownload(ctx context.Context, msg *Message, value string) error {
	kind, format, err := keyboard.ParseDownload(value)
	if err != nil {
		return err
	}

	w, err := h.stateManager.Get(ctx, msg.UserID)
	if err != nil {
		return err
	}

	result, err := w.Result(kind)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	f, err := h.formatters.Create(format)
	if err != nil {
		return err
	}

	data, err := f.Format(result)
	if err != nil {
		return fmt.Errorf("format %s as %s: %w", kind, format, err)
	}

	filename := formatter.Filename(kind, f, h.now().UnixMilli())
	ctxzap.Info(ctx, "sending result file",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)

	return h.messageSender.SendDocument(ctx, msg.ChatID, filename, data)
}
