package entity

type ResultFormat string

const (
	FormatText     ResultFormat = "txt"
	FormatMarkdown ResultFormat = "md"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

// ResultFormats lists export formats in the order they are offered to the user
var ResultFormats = []ResultFormat{
	FormatText,
	FormatMarkdown,
	FormatPDF,
	FormatDOCX,
}

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatText, FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// ExportRequest is the body of POST /api/export
type ExportRequest struct {
	Text   string       `json:"text"`
	Kind   ResultKind   `json:"kind"`
	Format ResultFormat `json:"format"`
}

// ErrorResponse is the JSON error body returned by every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
