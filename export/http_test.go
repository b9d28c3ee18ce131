package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterReading(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter()
	e.Register(reg)
	r := NewRouter(e, reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/reading", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e.Update(testRecord())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/reading", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, testRecord(), got)
}

func TestRouterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter()
	e.Register(reg)
	e.Update(testRecord())
	r := NewRouter(e, reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "sensors_bme688_iaq_score 50"), body)
	assert.True(t, strings.Contains(body, "sensors_bme688_pressure_pascal 92734"), body)
}

func TestRouterMethod(t *testing.T) {
	e := NewExporter()
	r := NewRouter(e, prometheus.NewRegistry())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/reading", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
