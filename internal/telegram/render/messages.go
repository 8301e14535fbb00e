package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/wizard"
)

// ParseMode is used for every message rendered by this package
const ParseMode = "HTML"

const (
	MsgWelcome = `👋 Hi! I turn an idea for a building into a step-by-step construction plan and rough blueprints.

Tell me what you want to build in four short steps. /help lists the commands.`

	MsgHelp = `🤖 <b>Commands</b>

/start - start a new plan
/help - show this help
/cancel - forget the current plan

<b>How it works</b>
1. Pick a building type
2. Describe it, optionally with a photo
3. Pick the terrain and enter a budget
4. Get the plan, then blueprints, and download them as TXT, MD, PDF or DOCX`

	MsgStepBuildingType = "<b>Step 1 of 4.</b> What do you want to build?"

	MsgStepDescription = `<b>Step 2 of 4.</b> Describe what you want to build.

Send a text message. You can also send a photo of a similar building or a sketch.`

	MsgStepTerrainBudget = `<b>Step 3 of 4.</b> Pick the terrain and send your budget as a message, e.g. <i>$250,000</i>.`

	MsgStepResults = "<b>Step 4 of 4.</b> Results"

	MsgGeneratingPlan       = "🏗 Generating your construction plan. This can take a minute..."
	MsgGeneratingBlueprints = "📐 Drawing blueprints for each phase. This can take a minute..."
	MsgPreparingFile        = "📄 Preparing your file..."
	MsgCancelled            = "🗑 Your plan was discarded. Send /start to begin again."
	MsgUnsupportedInput     = "I can only use text and photos here."
	MsgUseButtons           = "Please use the buttons below."
	MsgRateLimited          = "⚠️ Too many requests. Please wait a moment."
	MsgRateLimitedAgain     = "⚠️ Request limit exceeded. Wait about 30 seconds before trying again."
	MsgRateLimitedBlocked   = "🛑 You are sending requests too often. Please wait a minute."
)

// Error messages
const (
	ErrGeneric         = "❌ Something went wrong. Try again or send /start"
	ErrTimeout         = "⏱ The request took too long. Please try again."
	ErrNetworkIssue    = "🌐 Network problem. Please try again in a moment."
	ErrBusy            = "⏳ Still working on your previous request."
	ErrInvalidStep     = "This action is not available on the current step."
	ErrNoResult        = "Nothing has been generated yet."
	ErrNotConfigured   = "❌ The service is not configured: API key not configured"
	ErrUnknownCommand  = "❌ Unknown command. Use /start"
	ErrInvalidCallback = "❌ Invalid button"
)

// messageLimit stays below Telegram's 4096 character cap to leave room for markup
const messageLimit = 3500

// StepMessage renders the prompt of the wizard's current step with what was chosen so far
func StepMessage(w *wizard.Wizard) string {
	var b strings.Builder

	switch w.Step {
	case wizard.StepBuildingType:
		b.WriteString(MsgStepBuildingType)
	case wizard.StepDescription:
		b.WriteString(MsgStepDescription)
	case wizard.StepTerrainBudget:
		b.WriteString(MsgStepTerrainBudget)
	case wizard.StepResults:
		b.WriteString(MsgStepResults)
	}

	summary := Summary(w)
	if summary != "" {
		b.WriteString("\n\n")
		b.WriteString(summary)
	}
	return b.String()
}

// Summary lists the answers given so far
func Summary(w *wizard.Wizard) string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", label, html.EscapeString(value)))
		}
	}

	add("Building type", string(w.BuildingType))
	add("Description", w.Description)
	if w.Image != nil {
		lines = append(lines, "<b>Photo:</b> attached")
	}
	add("Terrain", string(w.TerrainType))
	add("Budget", w.Budget)

	return strings.Join(lines, "\n")
}

// ResultMessages renders a result as HTML messages, one or more per '###' section.
// Blueprint bodies are preformatted so ASCII drawings keep their alignment.
func ResultMessages(result *entity.PlanResult) []string {
	var messages []string
	for _, section := range result.Sections() {
		for i, chunk := range splitLines(section.Body, messageLimit) {
			var b strings.Builder
			if section.Title != "" && i == 0 {
				fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(section.Title))
			}
			body := html.EscapeString(chunk)
			if result.Kind == entity.ResultKindBlueprints {
				body = "<pre>" + body + "</pre>"
			}
			b.WriteString(body)
			messages = append(messages, b.String())
		}
	}

	if len(messages) == 0 {
		messages = append(messages, ErrNoResult)
	}
	return messages
}

// splitLines cuts text into pieces of at most limit bytes, preferring line breaks
func splitLines(text string, limit int) []string {
	text = strings.Trim(text, "\n")
	if text == "" {
		return []string{""}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			cut := runeBoundary(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()

	return chunks
}

// runeBoundary returns the largest index <= limit that does not split a UTF-8 sequence
func runeBoundary(s string, limit int) int {
	for limit > 0 && limit < len(s) && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return limit
}

// ClassifyError returns a user-friendly message for an error
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	var validationErr *wizard.ValidationError
	if errors.As(err, &validationErr) {
		return "⚠️ " + validationErr.Message
	}

	var upstreamErr *entity.UpstreamError
	if errors.As(err, &upstreamErr) {
		msg := "❌ " + html.EscapeString(upstreamErr.Message)
		if details := upstreamErr.Details(); details != "" {
			msg += " (" + details + ")"
		}
		return msg
	}

	switch {
	case errors.Is(err, entity.ErrMissingCredential):
		return ErrNotConfigured
	case errors.Is(err, entity.ErrBusy):
		return ErrBusy
	case errors.Is(err, entity.ErrInvalidStep):
		return ErrInvalidStep
	case errors.Is(err, entity.ErrNoResult):
		return ErrNoResult
	case errors.Is(err, entity.ErrFileTooLarge):
		return "❌ The photo is too large."
	case errors.Is(err, entity.ErrInvalidMediaType), errors.Is(err, entity.ErrInvalidFile):
		return "❌ This file is not a supported image."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	return ErrGeneric
}
