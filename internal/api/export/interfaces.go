package export

import (
	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/formatter"
)

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
