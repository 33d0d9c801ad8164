package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gostat/app"
	"gostat/domain/dataset"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sales, err := dataset.New("sales",
		dataset.StringColumn("Country", "Germany", "Germany", "France"),
		dataset.StringColumn("City", "Berlin", "Munich", "Paris"),
		dataset.NumericColumn("Sales", 10, 20, 5),
	)
	require.NoError(t, err)
	task, err := dataset.New("task",
		dataset.StringColumn("Team", "alpha", "beta", "alpha", "beta"),
		dataset.NumericColumn("Time_used", 1, 2, 3, 4),
	)
	require.NoError(t, err)

	salesSvc, err := app.NewStatsService(app.Resource{Name: "sales", Dataset: sales, Target: "Sales"})
	require.NoError(t, err)
	taskSvc, err := app.NewStatsService(app.Resource{Name: "task", Dataset: task, Target: "Time_used"})
	require.NoError(t, err)

	return NewServer([]*app.StatsService{salesSvc, taskSvc})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type statsBody struct {
	Entries int      `json:"entries"`
	Avg     *float64 `json:"avg"`
	Median  *float64 `json:"median"`
	Var     *float64 `json:"var"`
	Std     *float64 `json:"std"`
}

func decodeStats(t *testing.T, rec *httptest.ResponseRecorder) statsBody {
	t.Helper()
	var body statsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSales_FilterByCountry(t *testing.T) {
	rec := get(t, newTestServer(t), "/sales?Country=Germany")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeStats(t, rec)
	assert.Equal(t, 2, body.Entries)
	assert.InDelta(t, 15.0, *body.Avg, 1e-9)
	assert.InDelta(t, 15.0, *body.Median, 1e-9)
	assert.InDelta(t, 50.0, *body.Var, 1e-9)
	assert.InDelta(t, 7.0710678, *body.Std, 1e-6)
}

func TestSales_RepeatedParameter(t *testing.T) {
	rec := get(t, newTestServer(t), "/sales?City=Berlin&City=Paris")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeStats(t, rec)
	assert.Equal(t, 2, body.Entries)
	assert.InDelta(t, 7.5, *body.Avg, 1e-9)
}

func TestSales_UnknownColumn(t *testing.T) {
	rec := get(t, newTestServer(t), "/sales?NotAColumn=x")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NotAColumn", body["column"])
	assert.Equal(t, "UNKNOWN_COLUMN", body["code"])
	assert.Contains(t, body["message"], "NotAColumn")
}

func TestSales_NullFields(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/sales?Country=Spain")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":0,"avg":null,"median":null,"var":null,"std":null}`, rec.Body.String())

	rec = get(t, s, "/sales?Country=France")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":1,"avg":5,"median":5,"var":null,"std":null}`, rec.Body.String())
}

func TestTask_NoFilters(t *testing.T) {
	rec := get(t, newTestServer(t), "/task")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeStats(t, rec)
	assert.Equal(t, 4, body.Entries)
	assert.InDelta(t, 2.5, *body.Avg, 1e-9)
	assert.InDelta(t, 2.5, *body.Median, 1e-9)
	assert.InDelta(t, 5.0/3.0, *body.Var, 1e-9)
	assert.InDelta(t, 1.2909944, *body.Std, 1e-6)
}

func TestTask_ColumnsAreScopedToDataset(t *testing.T) {
	rec := get(t, newTestServer(t), "/task?Country=Germany")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "5f0c8f5e-3c1d-4c39-9a44-2f6f0f5a8f11")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "5f0c8f5e-3c1d-4c39-9a44-2f6f0f5a8f11", rec.Header().Get(RequestIDHeader))
}

func TestDatasetsListing(t *testing.T) {
	rec := get(t, newTestServer(t), "/datasets")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Datasets []DatasetInfo `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Datasets, 2)
	assert.Equal(t, "/sales", body.Datasets[0].Path)
	assert.Equal(t, "Sales", body.Datasets[0].Target)
	assert.Equal(t, ColumnInfo{Name: "Country", Type: "string"}, body.Datasets[0].Columns[0])
	assert.Equal(t, 4, body.Datasets[1].Rows)
}

func TestDocsPage(t *testing.T) {
	rec := get(t, newTestServer(t), "/docs")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	page := rec.Body.String()
	assert.Contains(t, page, "<title>gostat API</title>")
	assert.Contains(t, page, "GET /sales")
	assert.Contains(t, page, "Time_used")
}

func TestSales_OverflowingStatisticsAreNull(t *testing.T) {
	ds, err := dataset.New("sales",
		dataset.StringColumn("Country", "Germany", "France"),
		dataset.NumericColumn("Sales", 1e300, -1e300),
	)
	require.NoError(t, err)
	svc, err := app.NewStatsService(app.Resource{Name: "sales", Dataset: ds, Target: "Sales"})
	require.NoError(t, err)

	rec := get(t, NewServer([]*app.StatsService{svc}), "/sales")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":2,"avg":0,"median":0,"var":null,"std":null}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	rec := get(t, newTestServer(t), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"route /nope not found","code":"NOT_FOUND"}`, rec.Body.String())
}

func TestFilterSpecFromQuery(t *testing.T) {
	query := map[string][]string{"Country": {"Germany", "France"}, "City": {}}
	spec := FilterSpecFromQuery(query)

	assert.Equal(t, []string{"Germany", "France"}, spec["Country"])
	assert.Empty(t, spec["City"])

	query["Country"][0] = "Spain"
	assert.Equal(t, "Germany", spec["Country"][0])
}

func TestProfilingRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil)
	rec := httptest.NewRecorder()
	NewProfilingRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
