package handlers

import (
	"context"

	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Handler state constants. Message handlers are keyed by the name of the wizard step they serve.
const (
	HandlerStateCallback      = "CALLBACK"
	HandlerStateBuildingType  = "building_type"
	HandlerStateDescription   = "description"
	HandlerStateTerrainBudget = "terrain_budget"
	HandlerStateResults       = "results"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Caption      string
	Photo        []tgbotapi.PhotoSize
	Document     *tgbotapi.Document
	CallbackData string
	CallbackID   string
}

// HasImage reports whether the message carries a photo or a document
func (m *Message) HasImage() bool {
	return len(m.Photo) > 0 || m.Document != nil
}

// Handler defines the interface for state-specific handlers
type Handler interface {
	// Handle processes a message for this state
	Handle(ctx context.Context, msg *Message) error

	// GetState returns the state this handler manages
	GetState() string
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	stateName     string
	messageSender *MessageSender
	stateManager  *state.Manager
	presenter     *Presenter
}

func newBaseHandler(stateName string, sender *MessageSender, sm *state.Manager, kb *keyboard.Builder) BaseHandler {
	return BaseHandler{
		stateName:     stateName,
		messageSender: sender,
		stateManager:  sm,
		presenter:     NewPresenter(sender, kb),
	}
}

// GetState implements Handler
func (h *BaseHandler) GetState() string {
	return h.stateName
}

// sendMessage is a convenience wrapper for messageSender.Send
func (h *BaseHandler) sendMessage(ctx context.Context, chatID int64, text string, markup any) {
	if h.messageSender != nil {
		h.messageSender.Send(ctx, chatID, text, markup)
	}
}

// validStates defines all valid handler states
var validStates = map[string]bool{
	HandlerStateCallback:      true,
	HandlerStateBuildingType:  true,
	HandlerStateDescription:   true,
	HandlerStateTerrainBudget: true,
	HandlerStateResults:       true,
}

// IsValidState checks if a state is valid for handler registration
func IsValidState(state string) bool {
	_, ok := validStates[state]
	return ok
}
