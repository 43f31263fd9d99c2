package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/gss-dashboard/pkg/chart"
	"github.com/David-Botos/gss-dashboard/pkg/cleaner"
	"github.com/David-Botos/gss-dashboard/pkg/config"
	"github.com/David-Botos/gss-dashboard/pkg/model"
	"github.com/David-Botos/gss-dashboard/pkg/pipeline"
	"github.com/David-Botos/gss-dashboard/pkg/report"
)

func TestMain(m *testing.M) {
	// gosnowflake's keyring dependency keeps a dbus connection open when a
	// session bus is reachable
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/godbus/dbus.(*Conn).inWorker"))
}

var surveyRows = []string{
	"1,1.1,male,16,pacific,45,60000,60,50,55,70,very satisfied,agree,agree,disagree,disagree,agree",
	"2,0.9,female,12,new england,89 or older,30000,35,30,40,40,mod. satisfied,disagree,disagree,disagree,agree,agree",
	"3,1.0,male,DK,pacific,33,40000,40,35,45,45,mod. satisfied,agree,disagree,agree,IAP,disagree",
	"4,1.2,female,16,south atlantic,51,45000,55,IAP,60,60,very satisfied,agree,strongly disagree,disagree,disagree,agree",
	"5,0.8,male,8,new england,62,20000,25,20,30,20,a little dissat,agree,agree,agree,agree,agree",
	"6,1.0,female,14,pacific,29,38000,47,45,50,52,very satisfied,disagree,disagree,disagree,disagree,NOT SURE",
	"7,1.3,male,18,south atlantic,40,90000,70,65,70,80,very satisfied,agree,strongly agree,agree,agree,agree",
	"8,1.0,female,12,new england,37,28000,30,25,35,33,mod. satisfied,agree,agree,disagree,agree,CAN'T CHOOSE",
}

type recordSource struct {
	records [][]string
}

func (s recordSource) Name() string { return "memory" }

func (s recordSource) Fetch(ctx context.Context) ([][]string, error) {
	return s.records, nil
}

func testState(t *testing.T, extra ...string) *pipeline.State {
	t.Helper()
	records := [][]string{model.SourceColumns()}
	for _, row := range append(append([]string{}, surveyRows...), extra...) {
		records = append(records, strings.Split(row, ","))
	}
	state, err := pipeline.Run(context.Background(), recordSource{records: records}, pipeline.Options{Policy: cleaner.PolicyStrict}, zap.NewNop())
	require.NoError(t, err)
	return state
}

func testServer(t *testing.T, debug bool, logger *zap.Logger) (*Server, *pipeline.State) {
	t.Helper()
	state := testState(t)
	cfg := &config.Config{Host: "127.0.0.1", Port: 8051, Debug: debug}
	s, err := NewServer(state, cfg, logger)
	require.NoError(t, err)
	return s, state
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewServerRequiresState(t *testing.T) {
	_, err := NewServer(nil, &config.Config{}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewServer(&pipeline.State{}, &config.Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	s, _ := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Exploring the GSS Data to Discuss Gender Wage Gap</h1>")
	assert.Contains(t, body, `<a href="http://www.gss.norc.org/">General Social Survey (GSS)</a>`)
	for _, col := range report.SummaryColumns {
		assert.Contains(t, body, "<th>"+col+"</th>")
	}
	assert.Contains(t, body, "<td>male</td><td>52,500</td>")
	for _, name := range pipeline.ChartNames {
		assert.Contains(t, body, `src="/charts/`+name+`.svg"`)
	}
	assert.Contains(t, body, `<option value="satjob" selected>`)
	assert.Contains(t, body, `<option value="sex" selected>`)
	assert.Contains(t, body, "/charts/explore.svg?x=satjob&group=sex")
	assert.Contains(t, body, "8 respondents")
}

func TestIndexPreselectsQuery(t *testing.T) {
	s, _ := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/?x=relationship&group=region")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="relationship" selected>`)
	assert.Contains(t, body, `<option value="region" selected>`)
	assert.NotContains(t, body, `<option value="satjob" selected>`)
	assert.Contains(t, body, "/charts/explore.svg?x=relationship&group=region")
}

func TestIndexRejectsUnknownSelection(t *testing.T) {
	s, _ := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/?x=age")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticCharts(t *testing.T) {
	s, state := testServer(t, false, zap.NewNop())
	router := s.Router()

	for _, name := range pipeline.ChartNames {
		rec := get(t, router, "/charts/"+name+".svg")
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Equal(t, state.Charts[name], rec.Body.Bytes(), name)
	}

	rec := get(t, router, "/charts/unknown.svg")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExploreChart(t *testing.T) {
	s, _ := testServer(t, false, zap.NewNop())
	router := s.Router()

	rec := get(t, router, "/charts/explore.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	again := get(t, router, "/charts/explore.svg?x=satjob&group=sex")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, rec.Body.Bytes(), again.Body.Bytes(), "same selection renders the same chart")

	rec = get(t, router, "/charts/explore.svg?x=satjob&group=age")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid column selection")
}

func TestExploreAPI(t *testing.T) {
	s, state := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/api/explore?x=male_breadwinner&group=sex")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var c chart.BarChart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, model.ColMaleBreadwinner, c.XLabel)
	assert.Equal(t, state.Report.Breadwinner.Total(), c.Total())

	rec = get(t, s.Router(), "/api/explore?x=income")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportAPI(t *testing.T) {
	s, state := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var r report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, state.Report.LoadID, r.LoadID)
	require.Len(t, r.Summary, 2)
	require.NotNil(t, r.Summary[0].Income)
	assert.Equal(t, 52500.0, *r.Summary[0].Income)
	assert.Len(t, r.FacetedIncome.Facets, report.FacetBins)
}

func TestCleaningAPI(t *testing.T) {
	s, state := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/api/cleaning")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp cleaningResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, state.Result.LoadID, resp.LoadID)
	assert.Equal(t, 8, resp.RowsRead)
	assert.Equal(t, 8, resp.RowsKept)
	assert.Equal(t, 1, resp.Operations.ByOperation[model.OpAgeNormalization])
	assert.Equal(t, 1, resp.MissingByColumn[model.ColEducation])
	assert.NotEmpty(t, resp.Verification)
	assert.Equal(t, 0, resp.WarningCount)
	assert.Empty(t, resp.Warnings)
}

func TestCleaningAPIReportsWarnings(t *testing.T) {
	state := testState(t, "9,1.0,female,12,pacific,50,unknown,50,40,40,50,very satisfied,agree,agree,agree,agree,agree")
	s, err := NewServer(state, &config.Config{Host: "127.0.0.1", Port: 8051}, zap.NewNop())
	require.NoError(t, err)

	rec := get(t, s.Router(), "/api/cleaning")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp cleaningResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.WarningCount)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, pipeline.ErrorCategoryWarning, resp.Warnings[0].Category)
	assert.Equal(t, pipeline.StagePrepare, resp.Warnings[0].Stage)
	assert.Contains(t, resp.Warnings[0].Message, "column income")
	assert.Contains(t, rec.Body.String(), `"category":"Warning"`)
}

func TestHealth(t *testing.T) {
	s, state := testServer(t, false, zap.NewNop())

	rec := get(t, s.Router(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, state.Report.LoadID, body["load_id"])
	assert.Equal(t, 8.0, body["rows"])
	assert.Equal(t, true, body["verified"])
}

func TestProfilerOnlyInDebug(t *testing.T) {
	debug, _ := testServer(t, true, zap.NewNop())
	rec := get(t, debug.Router(), "/debug/pprof/")
	assert.Equal(t, http.StatusOK, rec.Code)

	quiet, _ := testServer(t, false, zap.NewNop())
	rec = get(t, quiet.Router(), "/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s, _ := testServer(t, false, zap.New(core))

	get(t, s.Router(), "/healthz")
	get(t, s.Router(), "/api/explore?group=age")

	served := logs.FilterMessage("Request served").All()
	require.Len(t, served, 2)

	fields := served[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/healthz", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, int64(http.StatusBadRequest), served[1].ContextMap()["status"])

	invalid := logs.FilterMessage("Invalid chart selection").All()
	require.Len(t, invalid, 1)
	assert.Equal(t, zapcore.ErrorLevel, invalid[0].Level)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := testServer(t, false, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.serve(ctx, ln)
	}()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
