// pkg/model/cleaning.go
package model

import "sort"

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	LoadID        string      // Load that performed the operation
	ColumnName    string      // Cleaned column name
	OriginalValue interface{} // Original raw value (may be nil)
	NewValue      string      // New value after cleaning ("" when missing)
	RowIdentifier string      // Respondent id, or the 1-based data row when the id is unusable
	Operation     string      // Type of cleaning performed (e.g., "age_normalization")
	Reason        string      // Reason for cleaning
}

// Cleaning operation types
const (
	OpAgeNormalization     = "age_normalization"
	OpTypeValidationFailed = "type_validation_failed"
)

// CleaningSummary counts cleaning operations for reporting
type CleaningSummary struct {
	Total       int                 `json:"total"`
	ByOperation map[string]int      `json:"by_operation"`
	ByColumn    map[string]int      `json:"by_column"`
	Samples     []CleaningOperation `json:"samples"`
}

// SummarizeOperations groups operations by type and column, keeping up to maxSamples examples
func SummarizeOperations(ops []CleaningOperation, maxSamples int) CleaningSummary {
	summary := CleaningSummary{
		Total:       len(ops),
		ByOperation: make(map[string]int),
		ByColumn:    make(map[string]int),
	}
	for _, op := range ops {
		summary.ByOperation[op.Operation]++
		summary.ByColumn[op.ColumnName]++
	}
	if maxSamples > len(ops) {
		maxSamples = len(ops)
	}
	if maxSamples > 0 {
		summary.Samples = append([]CleaningOperation(nil), ops[:maxSamples]...)
	}
	return summary
}

// OperationNames returns the operation types of the summary in sorted order
func (s CleaningSummary) OperationNames() []string {
	names := make([]string, 0, len(s.ByOperation))
	for name := range s.ByOperation {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
