package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.FetchCompleted("NEW", "ok")
	m.ItemsLoadedAdd("NEW", 3)
	m.FeedExhausted()
	m.StaleBatch("deck")
	m.RefillTriggered()
	m.Decision("accept")
	m.HapticFailed()
	m.CaughtUp()
	m.SessionOpened()
	m.SessionClosed()
	m.JournalFlushed("ok")
}

func TestMetrics_Counters(t *testing.T) {
	m := New("test")

	m.FetchCompleted("NEW", "ok")
	m.FetchCompleted("NEW", "ok")
	m.FetchCompleted("FEATURED", "error")
	m.ItemsLoadedAdd("NEW", 20)
	m.ItemsLoadedAdd("NEW", 0)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("NEW", "ok")); got != 2 {
		t.Errorf("fetches NEW/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("FEATURED", "error")); got != 1 {
		t.Errorf("fetches FEATURED/error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsLoaded.WithLabelValues("NEW")); got != 20 {
		t.Errorf("items NEW = %v, want 20", got)
	}
	if got := testutil.ToFloat64(m.SessionsActive); got != 1 {
		t.Errorf("sessions active = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New("")
	m.Decision("reject")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `base_swiper_deck_decisions_total{direction="reject"} 1`) {
		t.Errorf("metrics output missing decision counter:\n%s", rec.Body.String())
	}
}
