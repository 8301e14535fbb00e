// Package wizard holds the four-step flow that collects a building request
// and keeps the generated plan and blueprints for one user.
package wizard

import (
	"strings"
	"time"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/google/uuid"
)

type Step int

const (
	StepBuildingType Step = iota + 1
	StepDescription
	StepTerrainBudget
	StepResults
)

const (
	emptyPlanText       = "No steps generated"
	emptyBlueprintsText = "No blueprints generated"
)

func (s Step) String() string {
	switch s {
	case StepBuildingType:
		return "building_type"
	case StepDescription:
		return "description"
	case StepTerrainBudget:
		return "terrain_budget"
	case StepResults:
		return "results"
	default:
		return "unknown"
	}
}

// Wizard is the in-memory state of one run through the flow.
// It is not safe for concurrent use; callers serialize access per user.
type Wizard struct {
	ID   string
	Step Step

	BuildingType entity.BuildingType
	Description  string
	Image        *entity.Image
	TerrainType  entity.TerrainType
	Budget       string

	Plan       string
	Blueprints string

	// Busy is set while a completion call is outstanding
	Busy bool

	UpdatedAt time.Time
}

func New() *Wizard {
	return &Wizard{
		ID:        uuid.NewString(),
		Step:      StepBuildingType,
		UpdatedAt: time.Now(),
	}
}

func (w *Wizard) touch() {
	w.UpdatedAt = time.Now()
}

func (w *Wizard) requireStep(step Step) error {
	if w.Step != step {
		return entity.ErrInvalidStep
	}
	return nil
}

func (w *Wizard) SetBuildingType(bt entity.BuildingType) error {
	if err := w.requireStep(StepBuildingType); err != nil {
		return err
	}
	if err := bt.Validate(); err != nil {
		return err
	}
	w.BuildingType = bt
	w.touch()
	return nil
}

func (w *Wizard) SetDescription(text string) error {
	if err := w.requireStep(StepDescription); err != nil {
		return err
	}
	w.Description = text
	w.touch()
	return nil
}

// AttachImage sets or replaces the optional photo
func (w *Wizard) AttachImage(img *entity.Image) error {
	if err := w.requireStep(StepDescription); err != nil {
		return err
	}
	w.Image = img
	w.touch()
	return nil
}

func (w *Wizard) RemoveImage() error {
	return w.AttachImage(nil)
}

func (w *Wizard) SetTerrain(tt entity.TerrainType) error {
	if err := w.requireStep(StepTerrainBudget); err != nil {
		return err
	}
	if err := tt.Validate(); err != nil {
		return err
	}
	w.TerrainType = tt
	w.touch()
	return nil
}

func (w *Wizard) SetBudget(budget string) error {
	if err := w.requireStep(StepTerrainBudget); err != nil {
		return err
	}
	w.Budget = budget
	w.touch()
	return nil
}

// Next advances from the building type and description steps.
// The terrain step is left by BeginAnalyze, the results step only by Back or Reset.
func (w *Wizard) Next() error {
	switch w.Step {
	case StepBuildingType:
		if w.BuildingType == "" {
			return errSelectBuildingType
		}
	case StepDescription:
		if strings.TrimSpace(w.Description) == "" {
			return errDescribeBuilding
		}
	default:
		return entity.ErrInvalidStep
	}

	w.Step++
	w.touch()
	return nil
}

func (w *Wizard) Back() {
	if w.Step > StepBuildingType {
		w.Step--
	}
	w.touch()
}

// BeginAnalyze validates the terrain step, marks the wizard busy and returns
// the request to send. Every successful call must be followed by CompletePlan
// or Release.
func (w *Wizard) BeginAnalyze() (*entity.BuildRequest, error) {
	if err := w.requireStep(StepTerrainBudget); err != nil {
		return nil, err
	}
	if w.Busy {
		return nil, entity.ErrBusy
	}
	if w.TerrainType == "" {
		return nil, errSelectTerrain
	}
	if strings.TrimSpace(w.Budget) == "" {
		return nil, errEnterBudget
	}

	w.Busy = true
	w.touch()

	return w.BuildRequest(), nil
}

// CompletePlan stores a fresh plan, drops stale blueprints and moves to the results step
func (w *Wizard) CompletePlan(plan string) {
	if plan == "" {
		plan = emptyPlanText
	}
	w.Plan = plan
	w.Blueprints = ""
	w.Step = StepResults
	w.Busy = false
	w.touch()
}

// BeginBlueprints marks the wizard busy and returns the plan to draw
func (w *Wizard) BeginBlueprints() (string, error) {
	if err := w.requireStep(StepResults); err != nil {
		return "", err
	}
	if w.Busy {
		return "", entity.ErrBusy
	}
	if w.Plan == "" {
		return "", entity.ErrNoResult
	}

	w.Busy = true
	w.touch()

	return w.Plan, nil
}

func (w *Wizard) CompleteBlueprints(blueprints string) {
	if blueprints == "" {
		blueprints = emptyBlueprintsText
	}
	w.Blueprints = blueprints
	w.Busy = false
	w.touch()
}

// Release clears the busy flag after a failed call, leaving the step unchanged
func (w *Wizard) Release() {
	w.Busy = false
	w.touch()
}

// Reset starts over with a blank wizard under the same id
func (w *Wizard) Reset() {
	*w = Wizard{
		ID:        w.ID,
		Step:      StepBuildingType,
		UpdatedAt: time.Now(),
	}
}

func (w *Wizard) BuildRequest() *entity.BuildRequest {
	return &entity.BuildRequest{
		BuildingType: w.BuildingType,
		Description:  w.Description,
		TerrainType:  w.TerrainType,
		Budget:       w.Budget,
		Image:        w.Image,
	}
}

// Result returns the stored plan or blueprints
func (w *Wizard) Result(kind entity.ResultKind) (*entity.PlanResult, error) {
	var text string
	switch kind {
	case entity.ResultKindPlan:
		text = w.Plan
	case entity.ResultKindBlueprints:
		text = w.Blueprints
	default:
		return nil, entity.ErrInvalidParameter
	}

	if text == "" {
		return nil, entity.ErrNoResult
	}
	return &entity.PlanResult{Kind: kind, Text: text}, nil
}

// Current returns what the results step shows: blueprints once generated, the plan otherwise
func (w *Wizard) Current() (*entity.PlanResult, error) {
	if w.Blueprints != "" {
		return w.Result(entity.ResultKindBlueprints)
	}
	return w.Result(entity.ResultKindPlan)
}
