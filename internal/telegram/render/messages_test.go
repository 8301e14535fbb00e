package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepMessage_IncludesEscapedSummary(t *testing.T) {
	w := wizard.New()
	require.NoError(t, w.SetBuildingType(entity.BuildingTypeHouse))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetDescription("cabin <with> loft & deck"))

	msg := StepMessage(w)

	assert.True(t, strings.HasPrefix(msg, MsgStepDescription))
	assert.Contains(t, msg, "<b>Building type:</b> house")
	assert.Contains(t, msg, "cabin &lt;with&gt; loft &amp; deck")
	assert.NotContains(t, msg, "Budget")
}

func TestStepMessage_FreshWizard(t *testing.T) {
	assert.Equal(t, MsgStepBuildingType, StepMessage(wizard.New()))
}

func TestResultMessages_PlanSections(t *testing.T) {
	result := &entity.PlanResult{
		Kind: entity.ResultKindPlan,
		Text: "### Phase 1: Foundation\nPour <concrete>\n### Phase 2: Framing\nRaise walls",
	}

	msgs := ResultMessages(result)

	require.Len(t, msgs, 2)
	assert.Equal(t, "<b>Phase 1: Foundation</b>\nPour &lt;concrete&gt;", msgs[0])
	assert.Equal(t, "<b>Phase 2: Framing</b>\nRaise walls", msgs[1])
}

func TestResultMessages_BlueprintsPreformatted(t *testing.T) {
	result := &entity.PlanResult{
		Kind: entity.ResultKindBlueprints,
		Text: "### Top View\n+--+\n|  |\n+--+",
	}

	msgs := ResultMessages(result)

	require.Len(t, msgs, 1)
	assert.Equal(t, "<b>Top View</b>\n<pre>+--+\n|  |\n+--+</pre>", msgs[0])
}

func TestResultMessages_NoDelimiter(t *testing.T) {
	msgs := ResultMessages(&entity.PlanResult{Kind: entity.ResultKindPlan, Text: "Unable to generate response"})

	assert.Equal(t, []string{"Unable to generate response"}, msgs)
}

func TestResultMessages_LongSectionIsSplit(t *testing.T) {
	var lines []string
	for i := 0; i < 400; i++ {
		lines = append(lines, fmt.Sprintf("step %03d: lay another course of bricks", i))
	}
	result := &entity.PlanResult{Kind: entity.ResultKindPlan, Text: "### Walls\n" + strings.Join(lines, "\n")}

	msgs := ResultMessages(result)

	require.Greater(t, len(msgs), 1)
	assert.True(t, strings.HasPrefix(msgs[0], "<b>Walls</b>\n"))
	assert.NotContains(t, msgs[1], "<b>Walls</b>")
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), 4096)
	}
}

func TestSplitLines_LongLineKeepsRunes(t *testing.T) {
	line := strings.Repeat("é", 10)

	chunks := splitLines(line, 5)

	assert.Equal(t, line, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 5)
		assert.True(t, strings.HasPrefix(c, "é"))
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"credential", entity.ErrMissingCredential, ErrNotConfigured},
		{"busy", fmt.Errorf("analyze: %w", entity.ErrBusy), ErrBusy},
		{"upstream", &entity.UpstreamError{StatusCode: 529, Message: "Overloaded"}, "❌ Overloaded (HTTP 529)"},
		{"upstream without status", &entity.UpstreamError{Message: "connection refused"}, "❌ connection refused"},
		{"too large", entity.ErrFileTooLarge, "❌ The photo is too large."},
		{"unknown", errors.New("boom"), ErrGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
