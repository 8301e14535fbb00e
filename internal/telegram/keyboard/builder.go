package keyboard

import (
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	selectedMark = "✅ "
	terrainCols  = 2
)

var buildingTypeLabels = map[entity.BuildingType]string{
	entity.BuildingTypeBridge:   "🌉 Bridge",
	entity.BuildingTypeHouse:    "🏠 House",
	entity.BuildingTypeBuilding: "🏢 Building",
}

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildingTypeKeyboard offers the building types of step 1
func (b *Builder) BuildingTypeKeyboard(selected entity.BuildingType) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(entity.BuildingTypes))
	for _, bt := range entity.BuildingTypes {
		label := buildingTypeLabels[bt]
		if bt == selected {
			label = selectedMark + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionBuildingType, string(bt))))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(nextButton()),
	)
}

// DescriptionKeyboard is shown while the user types a description or sends a photo
func (b *Builder) DescriptionKeyboard(hasImage bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if hasImage {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Remove photo", EncodeCallback(ActionImage, ImageRemove)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(backButton(), nextButton()))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// TerrainKeyboard offers the terrain types of step 3 and the analyze trigger
func (b *Builder) TerrainKeyboard(selected entity.TerrainType) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}

	var row []tgbotapi.InlineKeyboardButton
	for _, tt := range entity.TerrainTypes {
		label := string(tt)
		if tt == selected {
			label = selectedMark + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionTerrain, string(tt))))
		if len(row) == terrainCols {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		backButton(),
		tgbotapi.NewInlineKeyboardButtonData("🏗 Generate plan", EncodeCallback(ActionRun, string(entity.ResultKindPlan))),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ResultsKeyboard is attached to the results of step 4
func (b *Builder) ResultsKeyboard(hasBlueprints bool) tgbotapi.InlineKeyboardMarkup {
	blueprintsLabel := "📐 Generate blueprints"
	if hasBlueprints {
		blueprintsLabel = "📐 Regenerate blueprints"
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(blueprintsLabel, EncodeCallback(ActionRun, string(entity.ResultKindBlueprints))),
		),
		downloadRow(entity.ResultKindPlan),
	}
	if hasBlueprints {
		rows = append(rows, downloadRow(entity.ResultKindBlueprints))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		backButton(),
		tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionNav, NavRestart)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func downloadRow(kind entity.ResultKind) []tgbotapi.InlineKeyboardButton {
	prefix := "📄 Plan "
	if kind == entity.ResultKindBlueprints {
		prefix = "📐 Blueprints "
	}

	row := make([]tgbotapi.InlineKeyboardButton, 0, len(entity.ResultFormats))
	for i, format := range entity.ResultFormats {
		label := strings.ToUpper(string(format))
		if i == 0 {
			label = prefix + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, EncodeDownload(kind, format)))
	}
	return row
}

func nextButton() tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData("Next ▶️", EncodeCallback(ActionNav, NavNext))
}

func backButton() tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData("◀️ Back", EncodeCallback(ActionNav, NavBack))
}
