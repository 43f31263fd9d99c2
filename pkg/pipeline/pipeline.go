// Package pipeline runs the one-time startup work of the dashboard: load and
// clean the survey, build the report, verify it and pre-render the static
// charts. The resulting State is read-only for the life of the process.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/chart"
	"github.com/David-Botos/gss-dashboard/pkg/cleaner"
	"github.com/David-Botos/gss-dashboard/pkg/config"
	"github.com/David-Botos/gss-dashboard/pkg/connector"
	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/report"
	"github.com/David-Botos/gss-dashboard/pkg/source"
)

// Names of the pre-rendered static charts
const (
	ChartBreadwinner  = "breadwinner"
	ChartScatter      = "scatter"
	ChartIncomeBox    = "income-box"
	ChartPrestigeBox  = "prestige-box"
	ChartIncomeFacets = "income-facets"
)

// ChartNames lists the static charts in page order
var ChartNames = []string{
	ChartBreadwinner,
	ChartScatter,
	ChartIncomeBox,
	ChartPrestigeBox,
	ChartIncomeFacets,
}

// State is everything computed at startup
type State struct {
	Table        *model.Table
	Report       *report.Report
	Result       *cleaner.Result
	Verification *VerificationReport
	Metrics      *Metrics
	Charts       map[string][]byte
}

// Options configures Run
type Options struct {
	Policy       cleaner.ValueParsePolicy
	FetchTimeout time.Duration
}

// Initialize opens the configured source and runs the startup pipeline.
// Database connections are closed once the single read is done.
func Initialize(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*State, error) {
	policy, err := cleaner.ParsePolicy(cfg.ParsePolicy)
	if err != nil {
		return nil, err
	}

	src, closeSource, err := OpenSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Warn("Failed to close data source", zap.Error(err))
		}
	}()

	return Run(ctx, src, Options{Policy: policy, FetchTimeout: cfg.FetchTimeout}, logger)
}

// OpenSource creates the raw source named by cfg.Source. The returned
// function releases any connection the source holds.
func OpenSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.RawSource, func() error, error) {
	switch cfg.Source {
	case config.SourceCSV:
		return source.NewCSVSource(cfg.Location, cfg.Encoding, logger), func() error { return nil }, nil
	case config.SourcePostgres, config.SourceSnowflake:
		conn, err := connector.NewConnectorFactory(cfg, logger).Create(ctx)
		if err != nil {
			return nil, nil, &cleaner.DataLoadError{Source: cfg.Source, Err: err}
		}
		return source.NewSQLSource(conn, cfg.Table, logger), conn.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported data source: %s", cfg.Source)
	}
}

// Run prepares the table from src and derives every static artifact
func Run(ctx context.Context, src source.RawSource, opts Options, logger *zap.Logger) (*State, error) {
	logger = logger.Named("pipeline")
	metrics := NewMetrics(logger)
	state := &State{Metrics: metrics}

	fail := func(stage string, err error) (*State, error) {
		rec := metrics.RecordError(stage, err)
		logger.Error("Startup failed",
			zap.String("stage", stage),
			zap.String("category", rec.Category.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	dc, err := cleaner.NewDataCleaner(logger, cleaner.Options{Policy: opts.Policy})
	if err != nil {
		return fail(StagePrepare, err)
	}

	fetchCtx := ctx
	if opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.FetchTimeout)
		defer cancel()
	}

	done := metrics.StartStage(StagePrepare)
	state.Table, state.Result, err = dc.Prepare(fetchCtx, src)
	done()
	if err != nil {
		return fail(StagePrepare, err)
	}
	metrics.RecordLoad(state.Result, state.Table.Len())
	for _, perr := range state.Result.ParseErrors {
		metrics.RecordWarning(StagePrepare, perr)
	}

	done = metrics.StartStage(StageBuild)
	state.Report, err = report.BuildReport(state.Table)
	done()
	if err != nil {
		return fail(StageBuild, err)
	}

	done = metrics.StartStage(StageVerify)
	state.Verification, err = NewVerifier(logger).Verify(state.Table, state.Report)
	done()
	if err != nil {
		return fail(StageVerify, err)
	}

	done = metrics.StartStage(StageRender)
	state.Charts, err = RenderCharts(state.Report)
	done()
	if err != nil {
		return fail(StageRender, err)
	}
	for _, svg := range state.Charts {
		metrics.RecordChart(len(svg))
	}

	metrics.Complete()
	metrics.LogSummary(logger)
	return state, nil
}

// StaticCharts maps chart names to the report's chart specifications
func StaticCharts(r *report.Report) map[string]chart.Spec {
	return map[string]chart.Spec{
		ChartBreadwinner:  r.Breadwinner,
		ChartScatter:      r.Scatter,
		ChartIncomeBox:    r.IncomeBySex,
		ChartPrestigeBox:  r.PrestigeBySex,
		ChartIncomeFacets: r.FacetedIncome,
	}
}

// RenderCharts renders every static chart to SVG
func RenderCharts(r *report.Report) (map[string][]byte, error) {
	specs := StaticCharts(r)
	out := make(map[string][]byte, len(specs))
	for _, name := range ChartNames {
		svg, err := specs[name].SVG()
		if err != nil {
			return nil, fmt.Errorf("failed to render %s chart: %w", name, err)
		}
		out[name] = svg
	}
	return out, nil
}
