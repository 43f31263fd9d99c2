package pipeline

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

// Check is one consistency check between the cleaned table and the report
type Check struct {
	Name     string `json:"name"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
	Passed   bool   `json:"passed"`
}

// VerificationReport contains the results of a report verification
type VerificationReport struct {
	LoadID           string        `json:"load_id"`
	VerificationTime time.Time     `json:"verification_time"`
	Checks           []Check       `json:"checks"`
	Duration         time.Duration `json:"duration"`
}

// Passed reports whether every check passed
func (r *VerificationReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// VerificationError lists the checks that failed
type VerificationError struct {
	Failed []Check
}

func (e *VerificationError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, c := range e.Failed {
		parts[i] = fmt.Sprintf("%s (expected %d, got %d)", c.Name, c.Expected, c.Actual)
	}
	return "report verification failed: " + strings.Join(parts, ", ")
}

// Verifier recounts report aggregates directly from the cleaned table
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	return &Verifier{logger: logger}
}

// Verify checks the report against the table. The returned error is a
// *VerificationError when any check fails.
func (v *Verifier) Verify(table *model.Table, r *report.Report) (*VerificationReport, error) {
	start := time.Now()
	vr := &VerificationReport{LoadID: r.LoadID, VerificationTime: start}

	sexes := make(map[string]bool)
	withBreadwinner := 0
	faceted := 0
	singleBin := 0
	table.Each(func(_ int, rec model.Record) {
		if rec.Sex.Valid {
			sexes[rec.Sex.String] = true
		}
		if rec.Sex.Valid && rec.MaleBreadwinner.Valid {
			withBreadwinner++
		}
		if rec.Sex.Valid && rec.JobPrestige.Valid && rec.Income.Valid {
			faceted++
			holders := 0
			for _, bin := range r.PrestigeBins {
				if bin.Contains(rec.JobPrestige.Float64) {
					holders++
				}
			}
			if holders == 1 {
				singleBin++
			}
		}
	})

	breadwinnerTotal := 0
	for _, c := range r.BreadwinnerCounts {
		breadwinnerTotal += c.Count
	}
	facetTotal := 0
	for _, f := range r.FacetedIncome.Facets {
		for _, b := range f.Chart.Boxes {
			facetTotal += b.Stats.N
		}
	}

	vr.Checks = []Check{
		newCheck("row_count", table.Len(), r.Rows),
		newCheck("summary_rows", len(sexes), len(r.Summary)),
		newCheck("breadwinner_total", withBreadwinner, breadwinnerTotal),
		newCheck("breadwinner_chart_total", breadwinnerTotal, r.Breadwinner.Total()),
		newCheck("scatter_points", faceted, len(r.Scatter.Points)),
		newCheck("facet_total", faceted, facetTotal),
		newCheck("single_bin_assignment", faceted, singleBin),
	}
	vr.Duration = time.Since(start)

	var failed []Check
	for _, c := range vr.Checks {
		if !c.Passed {
			failed = append(failed, c)
			v.logger.Error("Report check failed",
				zap.String("check", c.Name),
				zap.Int("expected", c.Expected),
				zap.Int("actual", c.Actual))
		}
	}
	if len(failed) > 0 {
		return vr, &VerificationError{Failed: failed}
	}

	v.logger.Info("Report verified",
		zap.String("load_id", r.LoadID),
		zap.Int("checks", len(vr.Checks)),
		zap.Duration("duration", vr.Duration))
	return vr, nil
}

func newCheck(name string, expected, actual int) Check {
	return Check{Name: name, Expected: expected, Actual: actual, Passed: expected == actual}
}
