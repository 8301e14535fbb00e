package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	"github.com/futig/blueprint-backend/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Presenter renders wizard steps as Telegram messages
type Presenter struct {
	sender   *MessageSender
	keyboard *keyboard.Builder
}

func NewPresenter(sender *MessageSender, kb *keyboard.Builder) *Presenter {
	return &Presenter{
		sender:   sender,
		keyboard: kb,
	}
}

// StepKeyboard returns the keyboard of the wizard's current step
func (p *Presenter) StepKeyboard(w *wizard.Wizard) tgbotapi.InlineKeyboardMarkup {
	switch w.Step {
	case wizard.StepDescription:
		return p.keyboard.DescriptionKeyboard(w.Image != nil)
	case wizard.StepTerrainBudget:
		return p.keyboard.TerrainKeyboard(w.TerrainType)
	case wizard.StepResults:
		return p.keyboard.ResultsKeyboard(w.Blueprints != "")
	default:
		return p.keyboard.BuildingTypeKeyboard(w.BuildingType)
	}
}

// ShowStep sends the current step as new messages.
// On the results step the current result follows the summary, one message per section,
// and the keyboard is attached to the last one.
func (p *Presenter) ShowStep(ctx context.Context, chatID int64, w *wizard.Wizard) error {
	kb := p.StepKeyboard(w)
	if w.Step != wizard.StepResults {
		return p.sender.Send(ctx, chatID, render.StepMessage(w), kb)
	}

	result, err := w.Current()
	if err != nil {
		return p.sender.Send(ctx, chatID, render.ErrNoResult, kb)
	}

	header := fmt.Sprintf("%s\n\n<b>%s</b>", render.StepMessage(w), html.EscapeString(result.Kind.Title()))
	if err := p.sender.Send(ctx, chatID, header, nil); err != nil {
		return err
	}

	messages := render.ResultMessages(result)
	for i, text := range messages {
		var markup any
		if i == len(messages)-1 {
			markup = kb
		}
		if err := p.sender.Send(ctx, chatID, text, markup); err != nil {
			return err
		}
	}
	return nil
}

// Refresh edits a step message in place after a selection changed.
// The results step is always sent anew.
func (p *Presenter) Refresh(ctx context.Context, chatID int64, messageID int, w *wizard.Wizard) error {
	if w.Step == wizard.StepResults || messageID == 0 {
		return p.ShowStep(ctx, chatID, w)
	}
	return p.sender.Edit(ctx, chatID, messageID, render.StepMessage(w), p.StepKeyboard(w))
}
