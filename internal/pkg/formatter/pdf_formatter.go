package formatter

import (
	"bytes"
	"os"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf for the UTF-8 capable font
	pdfFontName = "DejaVuSansMono"

	// In the container image fonts are copied next to the binary
	pdfFontRuntimePath = "ttf/DejaVuSansMono.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSansMono.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

// Format lays the sections out in a monospaced font so blueprint drawings stay aligned.
// Without the bundled TTF it falls back to core Courier with cp1252 translation.
func (pf *PDFFormatter) Format(result *entity.PlanResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(result.Kind.Title(), true)
	pdf.AddPage()

	fontName := "Courier"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		translate = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, translate(result.Kind.Title()))
	pdf.Ln(14)

	for _, section := range result.Sections() {
		if section.Title != "" {
			pdf.SetFont(fontName, "B", 12)
			pdf.MultiCell(0, 7, translate(section.Title), "", "", false)
			pdf.Ln(2)
		}
		if section.Body != "" {
			pdf.SetFont(fontName, "", 9)
			_, lineHeight := pdf.GetFontSize()
			pdf.MultiCell(0, lineHeight*1.4, translate(section.Body), "", "", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
