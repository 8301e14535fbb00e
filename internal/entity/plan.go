package entity

import "strings"

const sectionDelimiter = "###"

type ResultKind string

const (
	ResultKindPlan       ResultKind = "plan"
	ResultKindBlueprints ResultKind = "blueprints"
)

func (k ResultKind) IsValid() bool {
	switch k {
	case ResultKindPlan, ResultKindBlueprints:
		return true
	}
	return false
}

// Title returns the heading shown above a result of this kind
func (k ResultKind) Title() string {
	if k == ResultKindBlueprints {
		return "Construction Blueprints"
	}
	return "Your Construction Plan"
}

// PlanResult is the opaque text returned by the completion API
type PlanResult struct {
	Kind ResultKind
	Text string
}

// Section is one '###'-delimited part of a result.
// Title is empty when the text had no delimiter at all.
type Section struct {
	Title string
	Body  string
}

// Sections splits the result text on '###' for display.
func (p *PlanResult) Sections() []Section {
	return SplitSections(p.Text)
}

// SplitSections splits text on the '###' delimiter. Each non-blank chunk becomes a
// section whose first line is the title and whose remaining lines are the body.
func SplitSections(text string) []Section {
	if !strings.Contains(text, sectionDelimiter) {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []Section{{Body: text}}
	}

	var sections []Section
	for _, chunk := range strings.Split(text, sectionDelimiter) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		title, body, _ := strings.Cut(chunk, "\n")
		sections = append(sections, Section{
			Title: title,
			Body:  body,
		})
	}
	return sections
}
