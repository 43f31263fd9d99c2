// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"strconv"

	"github.com/David-Botos/gss-dashboard/pkg/converter"
	"github.com/David-Botos/gss-dashboard/pkg/model"
)

// Cleaning reasons recorded alongside operations
const (
	ReasonTopCodedAge      = "top_coded_age"
	ReasonUnparseableValue = "unparseable_value"
)

// rowIdentifier names a row by respondent id, falling back to its position
func rowIdentifier(rec *model.Record, row int) string {
	if rec.ID.Valid {
		return strconv.FormatInt(rec.ID.Int64, 10)
	}
	return fmt.Sprintf("row %d", row)
}

// ageNormalization records the top-coded age token being replaced by its value
func ageNormalization(loadID, rowID, raw string, value float64) model.CleaningOperation {
	return model.CleaningOperation{
		LoadID:        loadID,
		ColumnName:    model.ColAge,
		OriginalValue: raw,
		NewValue:      model.FormatLevel(value),
		RowIdentifier: rowID,
		Operation:     model.OpAgeNormalization,
		Reason:        ReasonTopCodedAge,
	}
}

// typeValidationFailure records a cell that became missing because it could not be parsed
func typeValidationFailure(loadID, rowID string, perr *ValueParseError) model.CleaningOperation {
	return model.CleaningOperation{
		LoadID:        loadID,
		ColumnName:    perr.Column,
		OriginalValue: perr.Value,
		NewValue:      "",
		RowIdentifier: rowID,
		Operation:     model.OpTypeValidationFailed,
		Reason:        ReasonUnparseableValue,
	}
}

// assign stores a converted cell in the record field for col
func assign(rec *model.Record, col model.Column, cell converter.Cell) {
	switch col.Kind {
	case model.KindID:
		rec.ID = cell.ID
	case model.KindNumeric:
		rec.SetNumeric(col.Name, cell.Number)
	case model.KindCategorical:
		rec.SetCategory(col.Name, cell.Category)
	}
}

// isMissing reports whether the field for col holds no value
func isMissing(rec *model.Record, col model.Column) bool {
	switch col.Kind {
	case model.KindID:
		return !rec.ID.Valid
	case model.KindNumeric:
		v, _ := rec.Numeric(col.Name)
		return !v.Valid
	default:
		v, _ := rec.Category(col.Name)
		return !v.Valid
	}
}
