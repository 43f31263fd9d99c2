// pkg/converter/values.go
package converter

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/David-Botos/gss-dashboard/pkg/model"
)

// IsMissing determines if a raw cell should be treated as a missing value
func (c *TypeConverter) IsMissing(raw string) bool {
	if model.IsMissingToken(raw) {
		return true
	}
	if c.config.TrimSpace {
		return model.IsMissingToken(strings.TrimSpace(raw))
	}
	return false
}

func (c *TypeConverter) prepare(raw string) string {
	if c.config.TrimSpace {
		return strings.TrimSpace(raw)
	}
	return raw
}

// ConvertNumeric parses a floating-point cell
func (c *TypeConverter) ConvertNumeric(raw string) (sql.NullFloat64, error) {
	if c.IsMissing(raw) {
		return sql.NullFloat64{}, nil
	}

	v := c.prepare(raw)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("cannot convert '%s' to numeric: %w", v, ErrNotNumeric)
	}
	// ParseFloat accepts spellings like "Inf" that are not survey values
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return sql.NullFloat64{}, fmt.Errorf("cannot convert '%s' to numeric: %w", v, ErrNotNumeric)
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

// ConvertAge parses an age cell. The top-coded token is replaced by its
// numeric value first, in which case normalized is true.
func (c *TypeConverter) ConvertAge(raw string) (age sql.NullFloat64, normalized bool, err error) {
	if c.IsMissing(raw) {
		return sql.NullFloat64{}, false, nil
	}

	if c.config.AgeCapToken != "" && c.prepare(raw) == c.config.AgeCapToken {
		return sql.NullFloat64{Float64: c.config.AgeCapValue, Valid: true}, true, nil
	}

	age, err = c.ConvertNumeric(raw)
	return age, false, err
}

// ConvertID parses a respondent identifier. Integral floats such as "12.0"
// are accepted since some exports write every number with a decimal point.
func (c *TypeConverter) ConvertID(raw string) (sql.NullInt64, error) {
	if c.IsMissing(raw) {
		return sql.NullInt64{}, nil
	}

	v := c.prepare(raw)
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return sql.NullInt64{Int64: i, Valid: true}, nil
	}

	f, err := c.ConvertNumeric(v)
	if err != nil {
		return sql.NullInt64{}, err
	}
	if f.Float64 != math.Trunc(f.Float64) || math.Abs(f.Float64) > math.MaxInt64 {
		return sql.NullInt64{}, fmt.Errorf("cannot convert '%s' to identifier: %w", v, ErrNotInteger)
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}, nil
}

// ConvertCategory returns the level of a categorical cell
func (c *TypeConverter) ConvertCategory(raw string) sql.NullString {
	if c.IsMissing(raw) {
		return sql.NullString{}
	}
	return sql.NullString{String: c.prepare(raw), Valid: true}
}
