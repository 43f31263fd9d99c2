package model

import (
	"database/sql"
	"strconv"
)

// Record is one cleaned survey respondent. Missing values have Valid == false.
type Record struct {
	ID                 sql.NullInt64
	Weight             sql.NullFloat64
	Sex                sql.NullString
	Education          sql.NullFloat64
	Region             sql.NullString
	Age                sql.NullFloat64
	Income             sql.NullFloat64
	JobPrestige        sql.NullFloat64
	MotherJobPrestige  sql.NullFloat64
	FatherJobPrestige  sql.NullFloat64
	SocioeconomicIndex sql.NullFloat64
	SatJob             sql.NullString
	Relationship       sql.NullString
	MaleBreadwinner    sql.NullString
	MenBetterSuited    sql.NullString
	ChildSuffer        sql.NullString
	MenOverwork        sql.NullString
}

// Numeric returns the value of a numeric column by cleaned name.
// ok is false when the column is unknown or not numeric.
func (r *Record) Numeric(name string) (v sql.NullFloat64, ok bool) {
	switch name {
	case ColWeight:
		return r.Weight, true
	case ColEducation:
		return r.Education, true
	case ColAge:
		return r.Age, true
	case ColIncome:
		return r.Income, true
	case ColJobPrestige:
		return r.JobPrestige, true
	case ColMotherJobPrestige:
		return r.MotherJobPrestige, true
	case ColFatherJobPrestige:
		return r.FatherJobPrestige, true
	case ColSocioeconomicIndex:
		return r.SocioeconomicIndex, true
	}
	return sql.NullFloat64{}, false
}

// SetNumeric assigns a numeric column by cleaned name
func (r *Record) SetNumeric(name string, v sql.NullFloat64) bool {
	switch name {
	case ColWeight:
		r.Weight = v
	case ColEducation:
		r.Education = v
	case ColAge:
		r.Age = v
	case ColIncome:
		r.Income = v
	case ColJobPrestige:
		r.JobPrestige = v
	case ColMotherJobPrestige:
		r.MotherJobPrestige = v
	case ColFatherJobPrestige:
		r.FatherJobPrestige = v
	case ColSocioeconomicIndex:
		r.SocioeconomicIndex = v
	default:
		return false
	}
	return true
}

// Category returns the level of a groupable column by cleaned name.
// Education is formatted as its shortest decimal representation.
func (r *Record) Category(name string) (v sql.NullString, ok bool) {
	switch name {
	case ColSex:
		return r.Sex, true
	case ColRegion:
		return r.Region, true
	case ColSatJob:
		return r.SatJob, true
	case ColRelationship:
		return r.Relationship, true
	case ColMaleBreadwinner:
		return r.MaleBreadwinner, true
	case ColMenBetterSuited:
		return r.MenBetterSuited, true
	case ColChildSuffer:
		return r.ChildSuffer, true
	case ColMenOverwork:
		return r.MenOverwork, true
	case ColEducation:
		if !r.Education.Valid {
			return sql.NullString{}, true
		}
		return sql.NullString{String: FormatLevel(r.Education.Float64), Valid: true}, true
	}
	return sql.NullString{}, false
}

// SetCategory assigns a categorical column by cleaned name
func (r *Record) SetCategory(name string, v sql.NullString) bool {
	switch name {
	case ColSex:
		r.Sex = v
	case ColRegion:
		r.Region = v
	case ColSatJob:
		r.SatJob = v
	case ColRelationship:
		r.Relationship = v
	case ColMaleBreadwinner:
		r.MaleBreadwinner = v
	case ColMenBetterSuited:
		r.MenBetterSuited = v
	case ColChildSuffer:
		r.ChildSuffer = v
	case ColMenOverwork:
		r.MenOverwork = v
	default:
		return false
	}
	return true
}

// FormatLevel formats a numeric value used as a category label
func FormatLevel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is the cleaned, immutable survey table. It is built once and shared
// read-only; accessors hand out copies.
type Table struct {
	loadID  string
	records []Record
}

// NewTable creates a table owning a private copy of records
func NewTable(loadID string, records []Record) *Table {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Table{loadID: loadID, records: owned}
}

// LoadID identifies the load that produced the table
func (t *Table) LoadID() string {
	return t.loadID
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.records)
}

// At returns a copy of the i-th record
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Each calls fn for every record in load order
func (t *Table) Each(fn func(i int, r Record)) {
	for i, r := range t.records {
		fn(i, r)
	}
}
