package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ehr/trialviz/internal/engine"
)

func TestProvider_ObserveChart(t *testing.T) {
	p := NewProvider()
	p.ObserveChart("labs", engine.FamilyBox, 20*time.Millisecond)
	p.ObserveChart("labs", engine.FamilyBox, 40*time.Millisecond)
	p.ObserveFiltered("labs", 120, 14)

	if n := testutil.CollectAndCount(p.chartSeconds, "trialviz_chart_duration_seconds"); n != 1 {
		t.Errorf("expected one labs/BOX series, got %d", n)
	}
	if v := testutil.ToFloat64(p.filteredEvents.WithLabelValues("labs")); v != 120 {
		t.Errorf("expected 120 filtered events, got %v", v)
	}
	if v := testutil.ToFloat64(p.filteredSubjects.WithLabelValues("labs")); v != 14 {
		t.Errorf("expected 14 filtered subjects, got %v", v)
	}
}

func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	p := NewProvider()
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET("/api/v1/metadata", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/api/v1/:domain/options", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, errors.New("unknown domain").Error())
	})

	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/metadata", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/metadata", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/nope/options", nil),
	} {
		e.ServeHTTP(httptest.NewRecorder(), r)
	}

	if v := testutil.ToFloat64(p.requests.WithLabelValues("GET", "/api/v1/metadata", "200")); v != 2 {
		t.Errorf("expected 2 metadata requests, got %v", v)
	}
	if v := testutil.ToFloat64(p.requests.WithLabelValues("POST", "/api/v1/:domain/options", "404")); v != 1 {
		t.Errorf("expected the 404 recorded against the route, got %v", v)
	}
	if v := testutil.ToFloat64(p.active); v != 0 {
		t.Errorf("expected no in-flight requests, got %v", v)
	}
}

func TestHandler_Exposition(t *testing.T) {
	p := NewProvider()
	p.ObserveFiltered("vitals", 3, 2)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), rec)
	if err := p.Handler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `trialviz_filtered_events{domain="vitals"} 3`) {
		t.Errorf("expected the vitals gauge in the exposition")
	}
}
