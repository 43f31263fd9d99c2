// pkg/converter/converter.go
package converter

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/model"
)

var (
	// ErrNotNumeric is wrapped by every failed numeric conversion
	ErrNotNumeric = errors.New("value is not numeric")
	// ErrNotInteger is wrapped when an identifier has a fractional part
	ErrNotInteger = errors.New("value is not an integer")
)

// TypeConverter turns raw survey cells into typed values
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for cell conversion
type TypeConverterConfig struct {
	// Literal used by the survey for top-coded ages
	AgeCapToken string
	// Value the top-coded age token stands for
	AgeCapValue float64
	// Whether to trim surrounding whitespace before conversion
	TrimSpace bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		AgeCapToken: "89 or older",
		AgeCapValue: 89,
		TrimSpace:   true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// Cell is a converted value. Only the field matching the column kind is set.
type Cell struct {
	ID       sql.NullInt64
	Number   sql.NullFloat64
	Category sql.NullString
	// Normalized is true when a known token was rewritten before parsing
	Normalized bool
}

// ConvertCell converts raw according to the kind of col
func (c *TypeConverter) ConvertCell(col model.Column, raw string) (Cell, error) {
	switch col.Kind {
	case model.KindID:
		id, err := c.ConvertID(raw)
		return Cell{ID: id}, err
	case model.KindNumeric:
		if col.Name == model.ColAge {
			age, normalized, err := c.ConvertAge(raw)
			return Cell{Number: age, Normalized: normalized}, err
		}
		num, err := c.ConvertNumeric(raw)
		return Cell{Number: num}, err
	case model.KindCategorical:
		return Cell{Category: c.ConvertCategory(raw)}, nil
	default:
		c.logger.Warn("Unknown column kind encountered",
			zap.String("column", col.Name),
			zap.Int("kind", int(col.Kind)))
		return Cell{}, fmt.Errorf("unknown kind %s for column %s", col.Kind, col.Name)
	}
}
