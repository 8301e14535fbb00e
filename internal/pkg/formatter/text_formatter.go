package formatter

import "github.com/futig/blueprint-backend/internal/entity"

const (
	textContentType   = "text/plain; charset=utf-8"
	textFileExtension = ".txt"
)

// TextFormatter writes the generated text unchanged
type TextFormatter struct{}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

func (tf *TextFormatter) Format(result *entity.PlanResult) ([]byte, error) {
	return []byte(result.Text), nil
}

func (tf *TextFormatter) ContentType() string {
	return textContentType
}

func (tf *TextFormatter) FileExtension() string {
	return textFileExtension
}
