package pipeline

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/cleaner"
)

// Startup stages, in execution order
const (
	StagePrepare = "prepare"
	StageBuild   = "build"
	StageVerify  = "verify"
	StageRender  = "render"
)

// Metrics tracks the startup load
type Metrics struct {
	mu              sync.Mutex
	logger          *zap.Logger
	StartTime       time.Time
	EndTime         time.Time
	Source          string
	LoadID          string
	RowsRead        int
	RowsKept        int
	StageDurations  map[string]time.Duration
	CleaningOps     map[string]int
	MissingByColumn map[string]int
	ErrorCounts     map[ErrorCategory]int
	Errors          []ErrorRecord
	ChartBytes      int
	PeakMemoryUsage uint64
}

// NewMetrics creates a new Metrics instance
func NewMetrics(logger *zap.Logger) *Metrics {
	return &Metrics{
		logger:         logger,
		StartTime:      time.Now(),
		StageDurations: make(map[string]time.Duration),
		CleaningOps:    make(map[string]int),
		ErrorCounts:    make(map[ErrorCategory]int),
	}
}

// StartStage begins timing a stage and returns a function that ends it
func (m *Metrics) StartStage(stage string) func() {
	start := time.Now()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		d := time.Since(start)
		m.StageDurations[stage] += d
		m.sampleMemory()
		if m.logger != nil {
			m.logger.Debug("Stage completed",
				zap.String("stage", stage),
				zap.Duration("duration", d))
		}
	}
}

// RecordLoad records the outcome of the dataset preparer
func (m *Metrics) RecordLoad(result *cleaner.Result, rowsKept int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Source = result.Source
	m.LoadID = result.LoadID
	m.RowsRead = result.RowsRead
	m.RowsKept = rowsKept
	m.MissingByColumn = result.MissingByColumn
	for op, n := range result.Summary(0).ByOperation {
		m.CleaningOps[op] += n
	}
}

// RecordError keeps a categorized record of err raised in stage
func (m *Metrics) RecordError(stage string, err error) ErrorRecord {
	return m.record(NewErrorRecord(stage, err))
}

// RecordWarning keeps a record of an error the stage recovered from
func (m *Metrics) RecordWarning(stage string, err error) ErrorRecord {
	return m.record(NewWarningRecord(stage, err))
}

func (m *Metrics) record(rec ErrorRecord) ErrorRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCounts[rec.Category]++
	m.Errors = append(m.Errors, rec)
	return rec
}

// Warnings returns the records that did not abort startup
func (m *Metrics) Warnings() []ErrorRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ErrorRecord
	for _, rec := range m.Errors {
		if !rec.Category.Fatal() {
			out = append(out, rec)
		}
	}
	return out
}

// RecordChart adds the size of a rendered chart
func (m *Metrics) RecordChart(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChartBytes += size
}

// sampleMemory keeps the peak heap allocation; callers hold the lock
func (m *Metrics) sampleMemory() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	if memStats.Alloc > m.PeakMemoryUsage {
		m.PeakMemoryUsage = memStats.Alloc
	}
}

// Complete marks the startup as complete
func (m *Metrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()
	m.sampleMemory()
}

// Duration returns the total duration of the startup
func (m *Metrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// LogSummary writes one line describing the startup
func (m *Metrics) LogSummary(logger *zap.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stages := make([]string, 0, len(m.StageDurations))
	for stage := range m.StageDurations {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	fields := []zap.Field{
		zap.String("source", m.Source),
		zap.String("load_id", m.LoadID),
		zap.Int("rows_read", m.RowsRead),
		zap.Int("rows_kept", m.RowsKept),
		zap.Any("cleaning_operations", m.CleaningOps),
		zap.Int("warnings", m.ErrorCounts[ErrorCategoryWarning]),
		zap.Int("chart_bytes", m.ChartBytes),
		zap.Uint64("peak_memory_bytes", m.PeakMemoryUsage),
		zap.Duration("total_duration", m.Duration()),
	}
	for _, stage := range stages {
		fields = append(fields, zap.Duration(stage+"_duration", m.StageDurations[stage]))
	}
	logger.Info("Dashboard data ready", fields...)
}
