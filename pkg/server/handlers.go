package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

// selection reads the explore chart fields from the query, falling back to
// the defaults
func selection(r *http.Request) (x, group string) {
	q := r.URL.Query()
	x, group = q.Get("x"), q.Get("group")
	if x == "" {
		x = report.DefaultXField
	}
	if group == "" {
		group = report.DefaultGroupField
	}
	return x, group
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	x, group := selection(r)
	if !validSelection(x, group) {
		s.badSelection(w, r, x, group, report.ErrInvalidSelection)
		return
	}

	data := pageData{
		Intro:       s.intro,
		LoadID:      s.state.Report.LoadID,
		Rows:        s.state.Report.Rows,
		Columns:     report.SummaryColumns,
		Summary:     s.state.Report.Summary,
		Sections:    staticSections,
		XFields:     report.XFields,
		GroupFields: report.GroupFields,
		X:           x,
		Group:       group,
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		msg := http.StatusText(http.StatusInternalServerError)
		if s.cfg.Debug {
			msg = err.Error()
		}
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"load_id":  s.state.Report.LoadID,
		"rows":     s.state.Table.Len(),
		"verified": s.state.Verification != nil && s.state.Verification.Passed(),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	svg, ok := s.state.Charts[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeSVG(w, svg)
}

func (s *Server) handleExploreChart(w http.ResponseWriter, r *http.Request) {
	x, group := selection(r)
	c, err := report.Regroup(s.state.Table, x, group)
	if err != nil {
		s.regroupFailed(w, r, x, group, err)
		return
	}

	svg, err := c.SVG()
	if err != nil {
		s.logger.Error("Failed to render explore chart",
			zap.String("x", x),
			zap.String("group", group),
			zap.Error(err))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	writeSVG(w, svg)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	x, group := selection(r)
	c, err := report.Regroup(s.state.Table, x, group)
	if err != nil {
		s.regroupFailed(w, r, x, group, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state.Report)
}

// cleaningResponse describes the startup load and its cleaning operations
type cleaningResponse struct {
	LoadID          string                 `json:"load_id"`
	Source          string                 `json:"source"`
	RowsRead        int                    `json:"rows_read"`
	RowsKept        int                    `json:"rows_kept"`
	MissingByColumn map[string]int         `json:"missing_by_column"`
	Operations      model.CleaningSummary  `json:"operations"`
	WarningCount    int                    `json:"warning_count"`
	Warnings        []pipeline.ErrorRecord `json:"warnings"`
	Verification    []pipeline.Check       `json:"verification,omitempty"`
}

func (s *Server) handleCleaning(w http.ResponseWriter, r *http.Request) {
	resp := cleaningResponse{
		RowsKept: s.state.Table.Len(),
	}
	if res := s.state.Result; res != nil {
		resp.LoadID = res.LoadID
		resp.Source = res.Source
		resp.RowsRead = res.RowsRead
		resp.MissingByColumn = res.MissingByColumn
		resp.Operations = res.Summary(cleaningSamples)
	}
	if s.state.Metrics != nil {
		warnings := s.state.Metrics.Warnings()
		resp.WarningCount = len(warnings)
		if len(warnings) > cleaningSamples {
			warnings = warnings[:cleaningSamples]
		}
		resp.Warnings = warnings
	}
	if s.state.Verification != nil {
		resp.Verification = s.state.Verification.Checks
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) regroupFailed(w http.ResponseWriter, r *http.Request, x, group string, err error) {
	if errors.Is(err, report.ErrInvalidSelection) {
		s.badSelection(w, r, x, group, err)
		return
	}
	s.logger.Error("Failed to regroup",
		zap.String("x", x),
		zap.String("group", group),
		zap.Error(err))
	http.Error(w, "failed to build chart", http.StatusInternalServerError)
}

// badSelection answers a request for fields outside the offered options.
// The page never offers such values, so it is logged as an error.
func (s *Server) badSelection(w http.ResponseWriter, r *http.Request, x, group string, err error) {
	s.logger.Error("Invalid chart selection",
		zap.String("path", r.URL.Path),
		zap.String("x", x),
		zap.String("group", group),
		zap.Error(err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func validSelection(x, group string) bool {
	return contains(report.XFields, x) && contains(report.GroupFields, group)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func writeSVG(w http.ResponseWriter, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(svg)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
