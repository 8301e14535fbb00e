package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	pkgRetry "github.com/futig/blueprint-backend/internal/pkg/retry"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageSender provides centralized message sending functionality.
// Sends are retried on rate limiting, server errors and network failures.
type MessageSender struct {
	bot    BotAPI
	retry  *pkgRetry.RetryConfig
	logger *zap.Logger
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot BotAPI, retryCfg *pkgRetry.RetryConfig, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:    bot,
		retry:  retryCfg,
		logger: logger,
	}
}

// Send sends an HTML message to the specified chat
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = render.ParseMode
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	return s.deliver(ctx, chatID, msg, "send message")
}

// Edit replaces the text and keyboard of a message sent earlier
func (s *MessageSender) Edit(ctx context.Context, chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	msg.ParseMode = render.ParseMode

	err := s.deliver(ctx, chatID, msg, "edit message")
	if isNotModified(err) {
		return nil
	}
	return err
}

// SendDocument uploads data as a file named filename
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})

	return s.deliver(ctx, chatID, doc, "send document")
}

// Answer acknowledges a callback query so the client stops its spinner
func (s *MessageSender) Answer(callbackID, text string) {
	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		s.logger.Warn("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

func (s *MessageSender) deliver(ctx context.Context, chatID int64, c tgbotapi.Chattable, op string) error {
	attempt := 0
	err := pkgRetry.Do(ctx, s.retry, func() error {
		attempt++
		_, err := s.bot.Send(c)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return pkgRetry.Permanent(err)
		}
		s.logger.Warn(op+" failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int64("chat_id", chatID),
		)
		return err
	})
	if err != nil && !isNotModified(err) {
		s.logger.Error(op+" failed",
			zap.Error(err),
			zap.Int("attempts", attempt),
			zap.Int64("chat_id", chatID),
		)
	}
	return err
}

// isRetryable reports whether a failed Bot API call may succeed when repeated
func isRetryable(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// isNotModified matches the error returned when an edit would not change the message
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
