package entity

import (
	"fmt"
	"strings"
)

type BuildingType string

const (
	BuildingTypeBridge   BuildingType = "bridge"
	BuildingTypeHouse    BuildingType = "house"
	BuildingTypeBuilding BuildingType = "building"
)

// BuildingTypes lists building types in the order they are offered to the user
var BuildingTypes = []BuildingType{
	BuildingTypeBridge,
	BuildingTypeHouse,
	BuildingTypeBuilding,
}

func (bt BuildingType) Validate() error {
	switch bt {
	case BuildingTypeBridge, BuildingTypeHouse, BuildingTypeBuilding:
		return nil
	default:
		return fmt.Errorf("%w: unknown building type %q", ErrInvalidParameter, string(bt))
	}
}

type TerrainType string

const (
	TerrainUrban    TerrainType = "Urban"
	TerrainSuburban TerrainType = "Suburban"
	TerrainRural    TerrainType = "Rural"
	TerrainCoastal  TerrainType = "Coastal"
	TerrainMountain TerrainType = "Mountain"
	TerrainDesert   TerrainType = "Desert"
	TerrainForest   TerrainType = "Forest"
	TerrainPlains   TerrainType = "Plains"
)

// TerrainTypes lists terrain types in the order they are offered to the user
var TerrainTypes = []TerrainType{
	TerrainUrban,
	TerrainSuburban,
	TerrainRural,
	TerrainCoastal,
	TerrainMountain,
	TerrainDesert,
	TerrainForest,
	TerrainPlains,
}

func (tt TerrainType) Validate() error {
	for _, known := range TerrainTypes {
		if tt == known {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown terrain type %q", ErrInvalidParameter, string(tt))
}

// Image is an uploaded picture of the thing to build
type Image struct {
	Data      []byte
	MediaType string
	Filename  string
}

// BuildRequest collects everything the wizard asks for before a plan is generated
type BuildRequest struct {
	BuildingType BuildingType
	Description  string
	TerrainType  TerrainType
	Budget       string
	Image        *Image
}

// Describe renders the request as the single text line sent to the completion API
func (r *BuildRequest) Describe() string {
	return fmt.Sprintf("Building Type: %s. Description: %s. Terrain Type: %s. Budget: %s.",
		r.BuildingType, r.Description, r.TerrainType, r.Budget)
}

// AnalyzeRequest is the raw input accepted by the completion proxy
type AnalyzeRequest struct {
	Image *Image
	Text  string
}

func (r *AnalyzeRequest) HasImage() bool {
	return r.Image != nil && len(r.Image.Data) > 0
}

func (r *AnalyzeRequest) HasText() bool {
	return r.Text != ""
}

// IsBlueprintRequest reports whether the text asks for blueprints rather than a plan
func (r *AnalyzeRequest) IsBlueprintRequest() bool {
	return strings.Contains(strings.ToLower(r.Text), "blueprint")
}

// AnalyzeResponse is returned by POST /api/analyze-house on success
type AnalyzeResponse struct {
	Steps string `json:"steps"`
}

// AnalyzeJSONRequest is the JSON variant of the analyze request body
type AnalyzeJSONRequest struct {
	Prompt string `json:"prompt"`
}
