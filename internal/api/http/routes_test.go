package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-records/internal/geocoding"
	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/store"
	"github.com/i474232898/weather-records/internal/weather"
)

type stubGeocoder struct{}

func (stubGeocoder) Resolve(_ context.Context, name string) geocoding.Resolution {
	if name != "Oslo" {
		return geocoding.Resolution{Outcome: geocoding.NotFound}
	}
	return geocoding.Resolution{Outcome: geocoding.Found, Place: geocoding.Place{
		Name: "Oslo", Country: "Norway", Latitude: 59.91, Longitude: 10.75,
	}}
}

func (stubGeocoder) Reverse(_ context.Context, lat, lon float64) string {
	return geocoding.FormatCoordinates(lat, lon)
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) FetchSeries(context.Context, float64, float64) ([]weather.HourlySample, error) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]weather.HourlySample, 0, 72)
	for i := 0; i < 72; i++ {
		temp := float64(i % 24)
		sym := "fair_day"
		out = append(out, weather.HourlySample{
			Time:        start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			Temperature: &temp,
			Symbol:      &sym,
		})
	}
	return out, nil
}

type testEnv struct {
	t     *testing.T
	store *store.MemoryStore
	do    func(req *http.Request) *http.Response
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	svc := records.NewService(st, stubGeocoder{}, weather.NewService(stubProvider{}))
	app := NewApp(svc, DefaultOptions())

	return &testEnv{
		t:     t,
		store: st,
		do: func(req *http.Request) *http.Response {
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			return resp
		},
	}
}

func (e *testEnv) get(path string) *http.Response {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) sendJSON(method, path, body string) *http.Response {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok", "service": "weather-records"}, decode[map[string]string](t, resp))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestWeatherByQuery(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/api/weather?q=Oslo")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]json.RawMessage](t, resp)
	assert.JSONEq(t, `"Oslo"`, string(body["location"]))
	assert.JSONEq(t, `59.91`, string(body["latitude"]))
	assert.Contains(t, string(body["current"]), `"temperature_2m":0`)
	assert.Contains(t, string(body["daily"]), `"time":["2024-01-01","2024-01-02","2024-01-03"]`)

	list, _ := env.store.ListSearches(context.Background(), 0)
	assert.Len(t, list, 1)
}

func TestWeatherByCoordinates(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/api/weather?lat=63.4305&lng=10.3951")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "63.43,10.40", body["location"])
}

func TestWeatherErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/api/weather", http.StatusBadRequest, "missing q or lat/lon"},
		{"/api/weather?q=%20%20", http.StatusBadRequest, "missing q or lat/lon"},
		{"/api/weather?lat=91&lon=10", http.StatusBadRequest, "invalid coordinates"},
		{"/api/weather?lat=abc&lon=10", http.StatusBadRequest, "invalid coordinates"},
		{"/api/weather?q=Atlantis", http.StatusNotFound, "Location not found"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp := env.get(tc.path)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, map[string]string{"error": tc.message}, decode[map[string]string](t, resp))
		})
	}

	list, _ := env.store.ListSearches(context.Background(), 0)
	assert.Empty(t, list)
}

func TestSearchesList(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		resp := env.get(fmt.Sprintf("/api/weather?lat=%d&lon=10", i+1))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := env.get("/api/searches?limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]searchSummary](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "3.00,10.00", list[0].Query)
	assert.Greater(t, list[0].ID, list[1].ID)
	require.NotNil(t, list[0].Temperature)
	assert.Equal(t, "fair_day", *list[0].WeatherCode)
}

func TestSearchesLimit(t *testing.T) {
	env := newTestEnv(t)

	for _, bad := range []string{"0", "-1", "ten"} {
		resp := env.get("/api/searches?limit=" + bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		assert.Equal(t, map[string]string{"error": "invalid limit"}, decode[map[string]string](t, resp))
	}

	for i := 0; i < 120; i++ {
		require.NoError(t, env.store.CreateSearch(context.Background(), &records.SimpleSearch{QueryText: "q", ResolvedName: "q"}))
	}

	resp := env.get("/api/searches?limit=500")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]searchSummary](t, resp), 100)

	resp = env.get("/api/searches")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]searchSummary](t, resp), 15)
}

func TestSearchesDelete(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.get("/api/weather?q=Oslo").StatusCode)

	resp := env.do(httptest.NewRequest(http.MethodDelete, "/api/searches/1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "deleted"}, decode[map[string]string](t, resp))

	for _, path := range []string{"/api/searches/1", "/api/searches/999", "/api/searches/abc"} {
		resp = env.do(httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, map[string]string{"error": "not found"}, decode[map[string]string](t, resp))
	}
}

func TestRecordsCRUD(t *testing.T) {
	env := newTestEnv(t)

	resp := env.sendJSON(http.MethodPost, "/api/records", `{"location":"Oslo","start_date":"2024-01-01","end_date":"2024-01-02"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]json.RawMessage](t, resp)
	assert.JSONEq(t, `1`, string(created["id"]))
	assert.JSONEq(t, `"Oslo"`, string(created["location"]))
	assert.JSONEq(t, `"2024-01-01"`, string(created["start_date"]))
	assert.Contains(t, string(created["data"]), `"provider":"stub"`)

	resp = env.get("/api/records")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]recordSummary](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Oslo", list[0].ResolvedName)
	assert.Equal(t, "2024-01-02", list[0].EndDate)

	resp = env.get("/api/records/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[recordDetail](t, resp)
	require.Len(t, detail.DailyList, 2)
	assert.Equal(t, "2024-01-01", detail.DailyList[0].Date)
	assert.Equal(t, 23.0, *detail.DailyList[0].TMax)
	assert.Equal(t, "fair_day", *detail.DailyList[1].Code)

	resp = env.sendJSON(http.MethodPut, "/api/records/1", `{"end_date":"2024-01-03"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[map[string]json.RawMessage](t, resp)
	assert.Contains(t, string(updated["data"]), `"2024-01-03"`)

	resp = env.do(httptest.NewRequest(http.MethodDelete, "/api/records/1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.get("/api/records/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecordsErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"missing fields", http.MethodPost, "/api/records", `{"location":"Oslo"}`, http.StatusBadRequest, "location, start_date, end_date required"},
		{"empty body", http.MethodPost, "/api/records", ``, http.StatusBadRequest, "location, start_date, end_date required"},
		{"bad json", http.MethodPost, "/api/records", `{`, http.StatusBadRequest, "invalid json"},
		{"bad date", http.MethodPost, "/api/records", `{"location":"Oslo","start_date":"2024/01/01","end_date":"2024-01-02"}`, http.StatusBadRequest, "Bad date format (YYYY-MM-DD)"},
		{"reversed", http.MethodPost, "/api/records", `{"location":"Oslo","start_date":"2024-01-05","end_date":"2024-01-02"}`, http.StatusBadRequest, "start_date after end_date"},
		{"too long", http.MethodPost, "/api/records", `{"location":"Oslo","start_date":"2024-01-01","end_date":"2024-02-15"}`, http.StatusBadRequest, "Range too large (max 31 days)"},
		{"unknown place", http.MethodPost, "/api/records", `{"location":"Atlantis","start_date":"2024-01-01","end_date":"2024-01-02"}`, http.StatusNotFound, "Location not found"},
		{"update missing", http.MethodPut, "/api/records/7", `{}`, http.StatusNotFound, "not found"},
		{"get non-numeric", http.MethodGet, "/api/records/x", ``, http.StatusNotFound, "not found"},
		{"delete missing", http.MethodDelete, "/api/records/7", ``, http.StatusNotFound, "not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.sendJSON(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, map[string]string{"error": tc.message}, decode[map[string]string](t, resp))
		})
	}

	list, _ := env.store.ListRecords(context.Background(), 0)
	assert.Empty(t, list)
}

func postForm(env *testEnv, values url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, "/ranges", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return env.do(req)
}

func TestRangesForm(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/ranges")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "No records yet.")

	resp = postForm(env, url.Values{
		"location":   {"Oslo"},
		"start_date": {"2024-01-01"},
		"end_date":   {"2024-01-03"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := bodyString(t, resp)
	assert.Contains(t, page, "Created.")
	assert.Contains(t, page, "2024-01-03")
	assert.Contains(t, page, "fair_day")
	assert.Contains(t, page, `href="/records/1/"`)

	messages := []struct {
		values url.Values
		want   string
	}{
		{url.Values{"location": {"Oslo"}}, "All fields required."},
		{url.Values{"location": {"Oslo"}, "start_date": {"2024-01-03"}, "end_date": {"2024-01-01"}}, "start_date after end_date"},
		{url.Values{"location": {"Atlantis"}, "start_date": {"2024-01-01"}, "end_date": {"2024-01-01"}}, "Location not found."},
	}
	for _, m := range messages {
		resp := postForm(env, m.values)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, bodyString(t, resp), m.want)
	}

	list, _ := env.store.ListRecords(context.Background(), 0)
	assert.Len(t, list, 1)
}

func TestDetailPages(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated,
		env.sendJSON(http.MethodPost, "/api/records", `{"location":"Oslo","start_date":"2024-01-01","end_date":"2024-01-02"}`).StatusCode)
	require.Equal(t, http.StatusOK, env.get("/api/weather?q=Oslo").StatusCode)

	resp := env.get("/records/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "Oslo")

	resp = env.get("/searches/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "2024-01-01")

	assert.Equal(t, http.StatusNotFound, env.get("/records/2").StatusCode)
	assert.Equal(t, http.StatusNotFound, env.get("/searches/9").StatusCode)
}

func TestIndexAndStatic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = env.get("/static/main.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, bodyString(t, resp), "/api/weather")
}
