package handlers

import (
	"context"
	"strings"

	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	"github.com/futig/blueprint-backend/internal/wizard"
)

// BudgetHandler takes the budget typed on step 3. Terrain is picked with buttons.
type BudgetHandler struct {
	BaseHandler
}

func NewBudgetHandler(sender *MessageSender, stateManager *state.Manager, kb *keyboard.Builder) *BudgetHandler {
	return &BudgetHandler{
		BaseHandler: newBaseHandler(HandlerStateTerrainBudget, sender, stateManager, kb),
	}
}

func (h *BudgetHandler) Handle(ctx context.Context, msg *Message) error {
	budget := strings.TrimSpace(msg.Text)
	if budget == "" {
		h.sendMessage(ctx, msg.ChatID, render.MsgUnsupportedInput+"\n\n"+render.MsgStepTerrainBudget, nil)
		return nil
	}

	w, err := h.stateManager.Update(ctx, msg.UserID, func(w *wizard.Wizard) error {
		return w.SetBudget(budget)
	})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.presenter.ShowStep(ctx, msg.ChatID, w)
}
