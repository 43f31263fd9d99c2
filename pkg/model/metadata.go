// pkg/model/metadata.go
package model

import "strings"

// ColumnKind describes how a raw column is typed after cleaning
type ColumnKind int

const (
	// KindID is an integer-like respondent identifier
	KindID ColumnKind = iota
	// KindNumeric is parsed as a float64
	KindNumeric
	// KindCategorical is kept as a string level
	KindCategorical
)

// String returns a string representation of the column kind
func (k ColumnKind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column represents metadata about a retained survey column
type Column struct {
	Source string     // Column name in the raw dataset
	Name   string     // Column name after renaming
	Kind   ColumnKind // How the cleaned value is typed
}

// Cleaned column names
const (
	ColID                 = "id"
	ColWeight             = "weight"
	ColSex                = "sex"
	ColEducation          = "education"
	ColRegion             = "region"
	ColAge                = "age"
	ColIncome             = "income"
	ColJobPrestige        = "job_prestige"
	ColMotherJobPrestige  = "mother_job_prestige"
	ColFatherJobPrestige  = "father_job_prestige"
	ColSocioeconomicIndex = "socioeconomic_index"
	ColSatJob             = "satjob"
	ColRelationship       = "relationship"
	ColMaleBreadwinner    = "male_breadwinner"
	ColMenBetterSuited    = "men_bettersuited"
	ColChildSuffer        = "child_suffer"
	ColMenOverwork        = "men_overwork"
)

// Columns is the fixed, ordered catalogue of retained columns.
// The rename mapping is total over it: every source name maps to exactly one cleaned name.
var Columns = []Column{
	{Source: "id", Name: ColID, Kind: KindID},
	{Source: "wtss", Name: ColWeight, Kind: KindNumeric},
	{Source: "sex", Name: ColSex, Kind: KindCategorical},
	{Source: "educ", Name: ColEducation, Kind: KindNumeric},
	{Source: "region", Name: ColRegion, Kind: KindCategorical},
	{Source: "age", Name: ColAge, Kind: KindNumeric},
	{Source: "coninc", Name: ColIncome, Kind: KindNumeric},
	{Source: "prestg10", Name: ColJobPrestige, Kind: KindNumeric},
	{Source: "mapres10", Name: ColMotherJobPrestige, Kind: KindNumeric},
	{Source: "papres10", Name: ColFatherJobPrestige, Kind: KindNumeric},
	{Source: "sei10", Name: ColSocioeconomicIndex, Kind: KindNumeric},
	{Source: "satjob", Name: ColSatJob, Kind: KindCategorical},
	{Source: "fechld", Name: ColRelationship, Kind: KindCategorical},
	{Source: "fefam", Name: ColMaleBreadwinner, Kind: KindCategorical},
	{Source: "fepol", Name: ColMenBetterSuited, Kind: KindCategorical},
	{Source: "fepresch", Name: ColChildSuffer, Kind: KindCategorical},
	{Source: "meovrwrk", Name: ColMenOverwork, Kind: KindCategorical},
}

// SourceColumns returns the raw column names that must be present in the dataset
func SourceColumns() []string {
	names := make([]string, len(Columns))
	for i, col := range Columns {
		names[i] = col.Source
	}
	return names
}

// RenameMapping returns the raw name -> cleaned name mapping
func RenameMapping() map[string]string {
	mapping := make(map[string]string, len(Columns))
	for _, col := range Columns {
		mapping[col.Source] = col.Name
	}
	return mapping
}

// GetColumnByName returns a column by cleaned name (case-insensitive).
// Returns nil if column not found
func GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &Columns[i]
		}
	}
	return nil
}

// IsGroupable reports whether the column can be used as a grouping key.
// Categorical columns group by level; numeric education groups by its value.
func (col *Column) IsGroupable() bool {
	return col.Kind == KindCategorical || col.Name == ColEducation
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
