package formatter

import (
	"bytes"
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(result *entity.PlanResult) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(result.Kind.Title())

	for _, section := range result.Sections() {
		if section.Title != "" {
			headingPar := doc.AddParagraph()
			headingPar.SetStyle("Heading1")
			headingPar.AddRun().AddText(section.Title)
		}

		// One run per line keeps drawings line-for-line
		bodyPar := doc.AddParagraph()
		run := bodyPar.AddRun()
		if result.Kind == entity.ResultKindBlueprints {
			run.Properties().SetFontFamily("Courier New")
		}
		for i, line := range strings.Split(section.Body, "\n") {
			if i > 0 {
				run.AddBreak()
			}
			run.AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
