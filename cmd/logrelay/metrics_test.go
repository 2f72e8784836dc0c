package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/logrelay/internal/relay"
)

type fixedStatus relay.Stats

func (f fixedStatus) Status() relay.Stats { return relay.Stats(f) }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadyzFollowsConnection(t *testing.T) {
	rec := get(t, newMetricsMux(fixedStatus{Connected: true}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	rec = get(t, newMetricsMux(fixedStatus{Connected: false}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, newMetricsMux(fixedStatus{Connected: true, Closing: true}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := get(t, newMetricsMux(fixedStatus{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStateAPI(t *testing.T) {
	mux := newMetricsMux(fixedStatus{Addr: "localhost:4567", Connected: true, Lines: 12, Attempts: 3})
	rec := get(t, mux, "/logrelay/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st relay.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "localhost:4567", st.Addr)
	assert.True(t, st.Connected)
	assert.EqualValues(t, 12, st.Lines)
	assert.EqualValues(t, 3, st.Attempts)
}

func TestDashboard(t *testing.T) {
	rec := get(t, newMetricsMux(fixedStatus{Addr: "localhost:4567", Lines: 9}), "/logrelay/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "localhost:4567")
	assert.Contains(t, rec.Body.String(), "<td>9</td>")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newMetricsMux(fixedStatus{}), "/logrelay/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logrelay_lines_total")
	assert.Contains(t, rec.Body.String(), "logrelay_connected")
}
