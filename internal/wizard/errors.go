package wizard

import "github.com/futig/blueprint-backend/internal/entity"

// ValidationError is a step guard failure. Message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return entity.ErrMissingField
}

var (
	errSelectBuildingType = &ValidationError{Message: "Please select a building type"}
	errDescribeBuilding   = &ValidationError{Message: "Please describe what you want to build"}
	errSelectTerrain      = &ValidationError{Message: "Please select a terrain type"}
	errEnterBudget        = &ValidationError{Message: "Please enter a budget"}
)
