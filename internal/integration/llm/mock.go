package llm

import (
	"context"
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockPlan = `### Phase 1: Foundation
1. Technical description: reinforced concrete strip footing, 600 mm wide, 300 mm deep.
2. Materials: C25/30 concrete, 12 mm rebar, formwork boards.
3. Tools: excavator, concrete mixer, laser level.
4. Steps: excavate to frost depth, place formwork, tie rebar, pour and vibrate.
5. Safety: shore trench walls deeper than 1.2 m.
6. Quality control: check level to +/- 5 mm before pouring.

### Phase 2: Framing
1. Technical description: 2x6 stud walls at 16 in (406 mm) centres.
2. Materials: kiln-dried lumber, structural screws, sheathing.
3. Tools: circular saw, nail gun, framing square.
4. Steps: lay sill plates, raise walls, brace, install headers.
5. Safety: fall protection above 6 ft (1.8 m).
6. Quality control: verify plumb and diagonal measurements.`

const mockBlueprints = `### Blueprint 1: Foundation Plan (Top View)
+------------------------------+
|                              |   Scale 1:100
|        10.0 m (32' 10")      |
|                              |
+------------------------------+
Footing: 600 mm x 300 mm, 2x 12 mm rebar continuous.

### Blueprint 2: Wall Section (Side View)
   |==|  2x6 stud @ 406 mm o.c.
   |  |  OSB sheathing 11 mm
   |==|  Sill plate on 6 mm gasket
Assembly: sill plate -> studs -> top plate -> sheathing.`

// MockConnector returns canned completions for local runs without network access
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResponse, error) {
	ctxzap.Info(ctx, "[MOCK] requesting completion", zap.String("model", req.Model))

	text := mockPlan
	if isBlueprintPrompt(req) {
		text = mockBlueprints
	}

	return &entity.CompletionResponse{
		Model:      req.Model,
		StopReason: "end_turn",
		Content:    []entity.ContentPart{entity.TextPart(text)},
	}, nil
}

func isBlueprintPrompt(req *entity.CompletionRequest) bool {
	for _, msg := range req.Messages {
		for _, part := range msg.Content {
			if part.Type == entity.ContentTypeText && strings.HasPrefix(part.Text, "BLUEPRINT REQUEST") {
				return true
			}
		}
	}
	return false
}
