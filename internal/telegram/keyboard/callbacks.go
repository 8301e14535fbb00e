package keyboard

import (
	"fmt"
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
)

// Callback actions
const (
	ActionBuildingType = "bt"  // value: building type
	ActionTerrain      = "tr"  // value: terrain type
	ActionNav          = "nav" // value: next, back, restart
	ActionRun          = "run" // value: plan, blueprints
	ActionImage        = "img" // value: remove
	ActionDownload     = "dl"  // value: <kind>:<format>
)

// Navigation values
const (
	NavNext    = "next"
	NavBack    = "back"
	NavRestart = "restart"

	ImageRemove = "remove"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}

// EncodeDownload creates the callback data of a download button
func EncodeDownload(kind entity.ResultKind, format entity.ResultFormat) string {
	return EncodeCallback(ActionDownload, string(kind)+":"+string(format))
}

// ParseDownload splits the value of a download callback
func ParseDownload(value string) (entity.ResultKind, entity.ResultFormat, error) {
	k, f, ok := strings.Cut(value, ":")
	kind, format := entity.ResultKind(k), entity.ResultFormat(f)
	if !ok || !kind.IsValid() || !format.IsValid() {
		return "", "", fmt.Errorf("%w: download %q", entity.ErrInvalidParameter, value)
	}
	return kind, format, nil
}
