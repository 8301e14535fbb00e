package formatter

import (
	"fmt"

	"github.com/futig/blueprint-backend/internal/entity"
)

// Formatter renders a generated plan or blueprint set as a downloadable file
type Formatter interface {
	Format(result *entity.PlanResult) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatText:
		return NewTextFormatter(), nil
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidParameter, format)
	}
}

// Filename builds the download name, e.g. construction-plan-1700000000000.txt
func Filename(kind entity.ResultKind, f Formatter, unixMillis int64) string {
	return fmt.Sprintf("construction-%s-%d%s", kind, unixMillis, f.FileExtension())
}
