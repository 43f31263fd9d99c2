package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/David-Botos/gss-dashboard/pkg/chart"
	"github.com/David-Botos/gss-dashboard/pkg/cleaner"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

// ErrorCategory defines categories of errors during startup
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryDataConversion
	ErrorCategorySchema
	ErrorCategoryLoad
	ErrorCategoryReport
	ErrorCategoryCritical
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryDataConversion:
		return "DataConversion"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryLoad:
		return "Load"
	case ErrorCategoryReport:
		return "Report"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// MarshalText encodes the category by name
func (ec ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// UnmarshalText decodes a category name written by MarshalText
func (ec *ErrorCategory) UnmarshalText(text []byte) error {
	for c := ErrorCategoryNone; c <= ErrorCategoryCritical; c++ {
		if c.String() == string(text) {
			*ec = c
			return nil
		}
	}
	return fmt.Errorf("unknown error category %q", text)
}

// Fatal reports whether an error of this category aborts startup. Only
// warnings leave the dashboard usable.
func (ec ErrorCategory) Fatal() bool {
	return ec > ErrorCategoryWarning
}

// Categorize determines the category of an error
func Categorize(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var (
		parseErr  *cleaner.ValueParseError
		schemaErr *cleaner.SchemaError
		loadErr   *cleaner.DataLoadError
		verifyErr *VerificationError
	)
	switch {
	case errors.As(err, &parseErr):
		return ErrorCategoryDataConversion
	case errors.As(err, &schemaErr):
		return ErrorCategorySchema
	case errors.As(err, &loadErr):
		return ErrorCategoryLoad
	case errors.Is(err, report.ErrEmptyAggregate),
		errors.Is(err, report.ErrInvalidSelection),
		errors.Is(err, chart.ErrNoData),
		errors.As(err, &verifyErr):
		return ErrorCategoryReport
	default:
		return ErrorCategoryCritical
	}
}

// ErrorRecord represents a single error or warning during startup
type ErrorRecord struct {
	Category  ErrorCategory `json:"category"`
	Stage     string        `json:"stage"`
	Error     error         `json:"-"`
	Message   string        `json:"message"` // Derived from Error but stored for serialization
	Timestamp time.Time     `json:"timestamp"`
}

// NewErrorRecord creates a categorized error record with current timestamp
func NewErrorRecord(stage string, err error) ErrorRecord {
	return newRecord(Categorize(err), stage, err)
}

// NewWarningRecord records an error that startup recovered from
func NewWarningRecord(stage string, err error) ErrorRecord {
	return newRecord(ErrorCategoryWarning, stage, err)
}

func newRecord(category ErrorCategory, stage string, err error) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Stage:     stage,
		Error:     err,
		Timestamp: time.Now(),
	}
	if err != nil {
		record.Message = err.Error()
	}
	return record
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))
	if r.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage: %s ", r.Stage))
	}
	sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	return sb.String()
}
