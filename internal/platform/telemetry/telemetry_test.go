package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHistogram_Observe(t *testing.T) {
	h := newHistogram([]float64{0.1, 0.5, 1.0})

	h.Observe(0.05)
	h.Observe(0.3)
	h.Observe(0.7)
	h.Observe(2.0)

	if h.Count() != 4 {
		t.Errorf("expected count 4, got %d", h.Count())
	}
	sum := h.Sum()
	if sum < 3.04 || sum > 3.06 {
		t.Errorf("expected sum ~3.05, got %f", sum)
	}

	cum := h.cumulativeBuckets()
	if cum[0] != 1 {
		t.Errorf("expected 1 observation <= 0.1, got %d", cum[0])
	}
	if cum[1] != 2 {
		t.Errorf("expected 2 observations <= 0.5, got %d", cum[1])
	}
	if cum[2] != 3 {
		t.Errorf("expected 3 observations <= 1.0, got %d", cum[2])
	}
}

func TestHistogram_ConcurrentObserve(t *testing.T) {
	h := newHistogram(defaultDurationBuckets)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Observe(0.05)
			}
		}()
	}
	wg.Wait()

	if h.Count() != 1000 {
		t.Errorf("expected count 1000, got %d", h.Count())
	}
}

func TestOperationCounter(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{})

	tp.OperationCounter("patient", "create")
	tp.OperationCounter("patient", "create")
	tp.OperationCounter("consultation", "start")

	if got := tp.GetCounter("health.operation.count", "patient", "create"); got != 2 {
		t.Errorf("expected 2 patient creates, got %d", got)
	}
	if got := tp.GetCounter("health.operation.count", "consultation", "start"); got != 1 {
		t.Errorf("expected 1 consultation start, got %d", got)
	}
	if got := tp.GetCounter("health.operation.count", "provider", "list"); got != 0 {
		t.Errorf("expected 0 for unused counter, got %d", got)
	}
}

func TestHealthMetrics_Gauges(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{})
	rec := tp.HealthMetrics()

	rec.SetPatientsTotal(42)
	rec.SetActiveConsultations(3)
	rec.SetDBPoolActive(5)

	if got := tp.GetGauge("health.patients.total"); got != 42 {
		t.Errorf("expected 42 patients, got %d", got)
	}
	if got := tp.GetGauge("health.consultations.active"); got != 3 {
		t.Errorf("expected 3 active consultations, got %d", got)
	}
	if got := tp.GetGauge("db.pool.active_connections"); got != 5 {
		t.Errorf("expected 5 active connections, got %d", got)
	}
}

func TestMetricsMiddleware_RecordsDuration(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/patients")

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := tp.MetricsMiddleware()(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hist := tp.GetHistogram("http.server.request.duration")
	if hist == nil {
		t.Fatal("expected duration histogram to be created")
	}
	if hist.Count() != 1 {
		t.Errorf("expected 1 observation, got %d", hist.Count())
	}

	key := LabelsKey("GET", "/api/patients", "200")
	labeled := tp.GetLabeledHistogram("http.server.request.duration", key)
	if labeled == nil {
		t.Fatal("expected labeled histogram for GET /api/patients 200")
	}

	if got := tp.GetGauge("http.server.active_requests"); got != 0 {
		t.Errorf("expected 0 active requests after completion, got %d", got)
	}
}

func TestTracingMiddleware_RecordsSpan(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/consultations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/consultations")

	handler := func(c echo.Context) error {
		return c.String(http.StatusCreated, "ok")
	}

	h := tp.TracingMiddleware()(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := tp.GetRecordedSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "HTTP POST /api/consultations" {
		t.Errorf("unexpected span name: %s", span.Name)
	}
	if span.StatusCode != SpanStatusOK {
		t.Errorf("expected OK status, got %d", span.StatusCode)
	}
	if span.Attributes["health.domain"] != "consultations" {
		t.Errorf("expected consultations domain, got %s", span.Attributes["health.domain"])
	}
	if len(span.TraceID) != 32 {
		t.Errorf("expected 32-char trace id, got %d chars", len(span.TraceID))
	}
}

func TestTracingMiddleware_ErrorStatus(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusInternalServerError, "boom")
	}

	h := tp.TracingMiddleware()(handler)
	h(c)

	spans := tp.GetRecordedSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].StatusCode != SpanStatusError {
		t.Errorf("expected error status for 500 response")
	}
}

func TestTracingDisabled(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{TracingEnabled: BoolPtr(false)})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := tp.TracingMiddleware()(handler)
	h(c)

	if len(tp.GetRecordedSpans()) != 0 {
		t.Error("expected no spans when tracing is disabled")
	}
}

func TestPrometheusHandler_Output(t *testing.T) {
	tp := NewTelemetryProvider(TelemetryConfig{})
	tp.OperationCounter("patient", "create")
	tp.HealthMetrics().SetPatientsTotal(7)

	e := echo.New()

	// Record one request through the metrics middleware first.
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/patients")
	mw := tp.MetricsMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	mw(c)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	if err := tp.PrometheusHandler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"# TYPE http_server_request_duration_seconds histogram",
		`health_operation_count{domain="patient",operation="create"} 1`,
		"health_patients_total 7",
		"http_server_request_duration_seconds_count",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}

func TestExtractAPIDomain(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/patients/123", "patients"},
		{"/api/doctors", "doctors"},
		{"/api/", ""},
		{"/health", ""},
		{"/metrics", ""},
	}
	for _, tc := range cases {
		if got := extractAPIDomain(tc.path); got != tc.want {
			t.Errorf("extractAPIDomain(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := TelemetryConfig{}
	cfg.applyDefaults()

	if cfg.ServiceName != "vitalink-server" {
		t.Errorf("unexpected default service name: %s", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("unexpected default sample rate: %f", cfg.SampleRate)
	}
	if !cfg.metricsOn() || !cfg.tracingOn() {
		t.Error("expected metrics and tracing enabled by default")
	}
}
