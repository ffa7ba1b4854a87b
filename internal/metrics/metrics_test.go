package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionStarted("city")
	m.QuestionAnswered("Yes")
	m.GuessSubmitted(true)
	m.GameWon("city", 12)
	m.PersistenceError("game")
	m.SetActiveSessions(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d", rec.Code)
	}
}

func TestCountersAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.GuessSubmitted(false)
	m.GuessSubmitted(true)
	m.GameWon("country", 90)

	if v := testutil.ToFloat64(m.Guesses.WithLabelValues("incorrect")); v != 1 {
		t.Errorf("incorrect guesses = %v", v)
	}
	if v := testutil.ToFloat64(m.GamesWon.WithLabelValues("country")); v != 1 {
		t.Errorf("games won = %v", v)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "geoquest_completion_seconds") {
		t.Error("handler output missing completion histogram")
	}
}
