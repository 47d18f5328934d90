package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dramco-iot/mme1536/internal/mme"
)

// The driver talks to the recorder through its own interface; keep the
// two in sync at compile time.
var _ mme.Recorder = (*Metrics)(nil)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	return rec.Body.String()
}

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if m.handler == nil {
		t.Error("Metrics.handler should be initialized")
	}
	// A second instance must not panic on duplicate registration.
	_ = NewMetrics()
}

func TestOperationCounters(t *testing.T) {
	m := NewMetrics()

	m.OperationStarted("multiply")
	m.OperationStarted("multiply")
	m.OperationStarted("auto-run")

	body := scrape(t, m)
	if !strings.Contains(body, `mme_operations_total{kind="multiply"} 2`) {
		t.Error("multiply counter not at 2")
	}
	if !strings.Contains(body, `mme_operations_total{kind="auto-run"} 1`) {
		t.Error("auto-run counter not at 1")
	}
}

func TestWaitObserved(t *testing.T) {
	m := NewMetrics()

	m.WaitObserved(50*time.Microsecond, true)
	m.WaitObserved(140*time.Millisecond, false)

	body := scrape(t, m)
	if !strings.Contains(body, "mme_completion_wait_seconds_count 2") {
		t.Error("wait histogram should hold 2 observations")
	}
	if !strings.Contains(body, "mme_completion_timeouts_total 1") {
		t.Error("timeout counter not at 1")
	}
}

func TestExposesGoRuntimeMetrics(t *testing.T) {
	body := scrape(t, NewMetrics())
	if !strings.Contains(body, "go_") {
		t.Error("metrics output should contain Go runtime metrics")
	}
}
