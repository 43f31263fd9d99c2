// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/converter"
	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/source"
)

// ValueParsePolicy decides what happens to a cell that cannot be converted
type ValueParsePolicy string

const (
	// PolicyStrict aborts the load on an unexpected age token. Unparseable
	// cells of other columns become missing values and are audited.
	PolicyStrict ValueParsePolicy = "strict"
	// PolicyLenient turns every unparseable cell into a missing value and
	// audits it
	PolicyLenient ValueParsePolicy = "lenient"
)

// ParsePolicy converts a configuration value into a ValueParsePolicy
func ParsePolicy(name string) (ValueParsePolicy, error) {
	switch p := ValueParsePolicy(name); p {
	case PolicyStrict, PolicyLenient:
		return p, nil
	case "":
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown value parse policy %q", name)
	}
}

// Options configures a DataCleaner
type Options struct {
	Policy ValueParsePolicy
}

// Result describes a completed load
type Result struct {
	LoadID          string
	Source          string
	RowsRead        int
	Operations      []model.CleaningOperation
	MissingByColumn map[string]int
	ParseErrors     []*ValueParseError // cells turned missing instead of aborting
	Duration        time.Duration
}

// Summary groups the load's cleaning operations for reporting
func (r *Result) Summary(maxSamples int) model.CleaningSummary {
	return model.SummarizeOperations(r.Operations, maxSamples)
}

// DataCleaner prepares the cleaned survey table from a raw source
type DataCleaner struct {
	logger    *zap.Logger
	converter *converter.TypeConverter
	opts      Options
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(logger *zap.Logger, opts Options) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Policy == "" {
		opts.Policy = PolicyStrict
	}
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}

	logger = logger.Named("cleaner")
	return &DataCleaner{
		logger:    logger,
		converter: converter.NewTypeConverter(logger),
		opts:      opts,
	}, nil
}

// Prepare reads src exactly once and builds the cleaned table
func (c *DataCleaner) Prepare(ctx context.Context, src source.RawSource) (*model.Table, *Result, error) {
	c.logger.Info("Loading dataset", zap.String("source", src.Name()))

	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, &DataLoadError{Source: src.Name(), Err: err}
	}
	return c.prepare(src.Name(), records)
}

// PrepareRecords builds the cleaned table from raw records whose first
// record is the header
func (c *DataCleaner) PrepareRecords(records [][]string) (*model.Table, *Result, error) {
	return c.prepare("records", records)
}

func (c *DataCleaner) prepare(name string, records [][]string) (*model.Table, *Result, error) {
	start := time.Now()
	if len(records) == 0 {
		return nil, nil, &DataLoadError{Source: name, Err: source.ErrNoHeader}
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(model.MissingTokens()),
	)
	if df.Err != nil {
		return nil, nil, &DataLoadError{Source: name, Err: df.Err}
	}

	if missing := missingColumns(df.Names()); len(missing) > 0 {
		return nil, nil, &SchemaError{Missing: missing}
	}

	df, err := project(df)
	if err != nil {
		return nil, nil, &DataLoadError{Source: name, Err: err}
	}

	result := &Result{
		LoadID:          uuid.New().String(),
		Source:          name,
		RowsRead:        df.Nrow(),
		MissingByColumn: make(map[string]int, len(model.Columns)),
	}

	cleaned, err := c.buildRecords(df, result)
	if err != nil {
		return nil, nil, err
	}
	result.Duration = time.Since(start)

	c.logger.Info("Prepared survey table",
		zap.String("load_id", result.LoadID),
		zap.String("source", name),
		zap.Int("rows", len(cleaned)),
		zap.Int("cleaning_operations", len(result.Operations)),
		zap.Duration("duration", result.Duration))
	for _, col := range model.Columns {
		c.logger.Debug("Missing values",
			zap.String("column", col.Name),
			zap.Int("count", result.MissingByColumn[col.Name]))
	}

	return model.NewTable(result.LoadID, cleaned), result, nil
}

// missingColumns returns the required raw columns absent from names, sorted
func missingColumns(names []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var missing []string
	for _, required := range model.SourceColumns() {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	sort.Strings(missing)
	return missing
}

// project keeps the retained raw columns in catalogue order and renames them
func project(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	df = df.Select(model.SourceColumns())
	if df.Err != nil {
		return df, fmt.Errorf("failed to select retained columns: %w", df.Err)
	}

	for _, col := range model.Columns {
		if col.Source == col.Name {
			continue
		}
		df = df.Rename(col.Name, col.Source)
		if df.Err != nil {
			return df, fmt.Errorf("failed to rename %s to %s: %w", col.Source, col.Name, df.Err)
		}
	}
	return df, nil
}

// buildRecords converts every cell of the projected frame into typed records
func (c *DataCleaner) buildRecords(df dataframe.DataFrame, result *Result) ([]model.Record, error) {
	cols := make([]series.Series, len(model.Columns))
	for j, col := range model.Columns {
		cols[j] = df.Col(col.Name)
		if cols[j].Err != nil {
			return nil, fmt.Errorf("failed to read column %s: %w", col.Name, cols[j].Err)
		}
	}

	records := make([]model.Record, df.Nrow())
	for i := range records {
		rec := &records[i]
		row := i + 1

		for j, col := range model.Columns {
			raw := ""
			if elem := cols[j].Elem(i); !elem.IsNA() {
				raw = elem.String()
			}

			cell, err := c.converter.ConvertCell(col, raw)
			if err != nil {
				perr := &ValueParseError{Column: col.Name, Row: row, Value: raw, Err: err}
				if c.aborts(col) {
					c.logger.Error("Unparseable value",
						zap.String("column", col.Name),
						zap.Int("row", row),
						zap.String("value", raw))
					return nil, perr
				}
				result.ParseErrors = append(result.ParseErrors, perr)
				result.Operations = append(result.Operations,
					typeValidationFailure(result.LoadID, rowIdentifier(rec, row), perr))
				cell = converter.Cell{}
			}

			assign(rec, col, cell)
			if cell.Normalized {
				result.Operations = append(result.Operations,
					ageNormalization(result.LoadID, rowIdentifier(rec, row), raw, cell.Number.Float64))
			}
			if isMissing(rec, col) {
				result.MissingByColumn[col.Name]++
			}
		}
	}

	return records, nil
}

// aborts reports whether an unparseable cell of col fails the whole load
func (c *DataCleaner) aborts(col model.Column) bool {
	return c.opts.Policy == PolicyStrict && col.Name == model.ColAge
}
