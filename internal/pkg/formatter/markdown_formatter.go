package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/blueprint-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format puts every section under its own heading. Bodies go into code fences
// so ASCII drawings keep their alignment.
func (mf *MarkdownFormatter) Format(result *entity.PlanResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", result.Kind.Title())

	for _, section := range result.Sections() {
		buf.WriteString("\n")
		if section.Title != "" {
			fmt.Fprintf(&buf, "## %s\n\n", section.Title)
		}
		if section.Body == "" {
			continue
		}
		if result.Kind == entity.ResultKindBlueprints {
			fmt.Fprintf(&buf, "```\n%s\n```\n", section.Body)
		} else {
			fmt.Fprintf(&buf, "%s\n", section.Body)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
