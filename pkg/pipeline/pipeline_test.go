package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/cleaner"
	"github.com/David-Botos/gss-dashboard/pkg/config"
	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

// surveyCSV builds a raw extract in source column order
func surveyCSV(extra ...string) string {
	rows := []string{
		"1,1.1,male,16,pacific,45,60000,60,50,55,70,very satisfied,agree,agree,disagree,disagree,agree",
		"2,0.9,female,12,new england,89 or older,30000,35,30,40,40,mod. satisfied,disagree,disagree,disagree,agree,agree",
		"3,1.0,male,DK,pacific,33,40000,40,35,45,45,mod. satisfied,agree,disagree,agree,IAP,disagree",
		"4,1.2,female,16,south atlantic,51,45000,55,IAP,60,60,very satisfied,agree,strongly disagree,disagree,disagree,agree",
		"5,0.8,male,8,new england,62,20000,25,20,30,20,a little dissat,agree,agree,agree,agree,agree",
		"6,1.0,female,14,pacific,29,38000,47,45,50,52,very satisfied,disagree,disagree,disagree,disagree,NOT SURE",
		"7,1.3,male,18,south atlantic,40,90000,70,65,70,80,very satisfied,agree,strongly agree,agree,agree,agree",
		"8,1.0,female,12,new england,37,28000,30,25,35,33,mod. satisfied,agree,agree,disagree,agree,CAN'T CHOOSE",
	}
	rows = append(rows, extra...)
	return strings.Join(model.SourceColumns(), ",") + "\n" + strings.Join(rows, "\n") + "\n"
}

type stringSource struct {
	data  string
	calls int
}

func (s *stringSource) Name() string { return "memory" }

func (s *stringSource) Fetch(ctx context.Context) ([][]string, error) {
	s.calls++
	var records [][]string
	for _, line := range strings.Split(strings.TrimSpace(s.data), "\n") {
		records = append(records, strings.Split(line, ","))
	}
	return records, nil
}

func TestRun(t *testing.T) {
	src := &stringSource{data: surveyCSV()}

	state, err := Run(context.Background(), src, Options{Policy: cleaner.PolicyStrict}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "the raw source is read exactly once")

	assert.Equal(t, 8, state.Table.Len())
	assert.Equal(t, state.Table.LoadID(), state.Report.LoadID)
	assert.True(t, state.Verification.Passed())

	for _, name := range ChartNames {
		svg, ok := state.Charts[name]
		require.True(t, ok, name)
		assert.Contains(t, string(svg), "<svg", name)
	}

	assert.Equal(t, 8, state.Metrics.RowsRead)
	assert.Equal(t, 8, state.Metrics.RowsKept)
	assert.Equal(t, 1, state.Metrics.CleaningOps[model.OpAgeNormalization])
	assert.Contains(t, state.Metrics.StageDurations, StageBuild)
	assert.Greater(t, state.Metrics.ChartBytes, 0)
	assert.False(t, state.Metrics.EndTime.IsZero())
}

func TestRunStrictPolicyAbortsOnBadAge(t *testing.T) {
	bad := "9,1.0,male,12,pacific,ninety,50000,50,40,40,50,very satisfied,agree,agree,agree,agree,agree"
	src := &stringSource{data: surveyCSV(bad)}

	_, err := Run(context.Background(), src, Options{Policy: cleaner.PolicyStrict}, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, ErrorCategoryDataConversion, Categorize(err))

	state, err := Run(context.Background(), &stringSource{data: surveyCSV(bad)}, Options{Policy: cleaner.PolicyLenient}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9, state.Table.Len())
	assert.Equal(t, 1, state.Metrics.CleaningOps[model.OpTypeValidationFailed])

	warnings := state.Metrics.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, ErrorCategoryWarning, warnings[0].Category)
	assert.Equal(t, StagePrepare, warnings[0].Stage)
	assert.Contains(t, warnings[0].Message, `"ninety" in column age at row 9`)
}

func TestRunStrictPolicyRecoversOtherColumns(t *testing.T) {
	bad := "9,1.0,male,12,pacific,50,plenty,50,40,40,50,very satisfied,agree,agree,agree,agree,agree"

	state, err := Run(context.Background(), &stringSource{data: surveyCSV(bad)}, Options{Policy: cleaner.PolicyStrict}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9, state.Table.Len())
	assert.False(t, state.Table.At(8).Income.Valid)

	warnings := state.Metrics.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "column income")
	assert.Equal(t, 1, state.Metrics.ErrorCounts[ErrorCategoryWarning])
}

func TestMetricsRecordsErrors(t *testing.T) {
	m := NewMetrics(zap.NewNop())

	rec := m.RecordError(StageBuild, fmt.Errorf("summary table: %w", report.ErrEmptyAggregate))
	assert.Equal(t, ErrorCategoryReport, rec.Category)
	m.RecordWarning(StagePrepare, &cleaner.ValueParseError{Column: "educ", Row: 3, Value: "x", Err: errors.New("bad")})

	require.Len(t, m.Errors, 2)
	assert.Equal(t, 1, m.ErrorCounts[ErrorCategoryReport])
	assert.Equal(t, 1, m.ErrorCounts[ErrorCategoryWarning])

	warnings := m.Warnings()
	require.Len(t, warnings, 1)
	assert.False(t, warnings[0].Category.Fatal())
	assert.True(t, m.Errors[0].Category.Fatal())

	text, err := ErrorCategoryWarning.MarshalText()
	require.NoError(t, err)
	var decoded ErrorCategory
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, ErrorCategoryWarning, decoded)
	assert.Error(t, decoded.UnmarshalText([]byte("Sideways")))
}

func TestRunSchemaError(t *testing.T) {
	src := &stringSource{data: "id,sex\n1,male\n"}

	_, err := Run(context.Background(), src, Options{}, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, ErrorCategorySchema, Categorize(err))
	assert.True(t, Categorize(err).Fatal())
}

func TestInitializeFromLocalCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gss2018.csv")
	require.NoError(t, os.WriteFile(path, []byte(surveyCSV()), 0o644))

	cfg := &config.Config{
		Source:       config.SourceCSV,
		Location:     path,
		Encoding:     "windows-1252",
		FetchTimeout: 5 * time.Second,
		ParsePolicy:  config.PolicyStrict,
	}
	state, err := Initialize(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, path, state.Result.Source)
	assert.Len(t, state.Report.Summary, 2)
}

func TestInitializeMissingFile(t *testing.T) {
	cfg := &config.Config{
		Source:      config.SourceCSV,
		Location:    filepath.Join(t.TempDir(), "absent.csv"),
		ParsePolicy: config.PolicyStrict,
	}
	_, err := Initialize(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, ErrorCategoryLoad, Categorize(err))
}

func TestInitializeRejectsUnknownPolicy(t *testing.T) {
	_, err := Initialize(context.Background(), &config.Config{Source: config.SourceCSV, ParsePolicy: "sloppy"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenSourceUnsupported(t *testing.T) {
	_, _, err := OpenSource(context.Background(), &config.Config{Source: "parquet"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCategory
	}{
		{nil, ErrorCategoryNone},
		{&cleaner.ValueParseError{Column: "age", Err: errors.New("bad")}, ErrorCategoryDataConversion},
		{fmt.Errorf("prepare: %w", &cleaner.SchemaError{Missing: []string{"sex"}}), ErrorCategorySchema},
		{&cleaner.DataLoadError{Source: "x", Err: errors.New("eof")}, ErrorCategoryLoad},
		{fmt.Errorf("build: %w", report.ErrEmptyAggregate), ErrorCategoryReport},
		{&VerificationError{}, ErrorCategoryReport},
		{errors.New("boom"), ErrorCategoryCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.err), "%v", tt.err)
	}

	assert.False(t, ErrorCategoryWarning.Fatal())
	assert.True(t, ErrorCategoryLoad.Fatal())
	assert.Equal(t, "Unknown(42)", ErrorCategory(42).String())

	rec := NewErrorRecord(StageBuild, report.ErrEmptyAggregate)
	assert.Equal(t, ErrorCategoryReport, rec.Category)
	assert.Contains(t, rec.String(), "[Report] Stage: build")

	warn := NewWarningRecord(StagePrepare, &cleaner.ValueParseError{Column: "age", Err: errors.New("bad")})
	assert.Equal(t, ErrorCategoryWarning, warn.Category)
	assert.Equal(t, ErrorCategoryDataConversion, Categorize(warn.Error))
}

func TestVerifierDetectsInconsistentReport(t *testing.T) {
	state, err := Run(context.Background(), &stringSource{data: surveyCSV()}, Options{}, zap.NewNop())
	require.NoError(t, err)

	tampered := *state.Report
	tampered.Summary = tampered.Summary[:1]
	tampered.BreadwinnerCounts = append([]report.GroupCount{{X: "agree", Group: "male", Count: 3}}, tampered.BreadwinnerCounts...)

	vr, err := NewVerifier(zap.NewNop()).Verify(state.Table, &tampered)
	require.Error(t, err)
	assert.False(t, vr.Passed())

	var verr *VerificationError
	require.True(t, errors.As(err, &verr))
	names := make([]string, len(verr.Failed))
	for i, c := range verr.Failed {
		names[i] = c.Name
	}
	assert.ElementsMatch(t, []string{"summary_rows", "breadwinner_total", "breadwinner_chart_total"}, names)
}
