package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New("wordle")
	m.RoundStarted("normal")
	m.RoundStarted("normal")
	m.RoundStarted("daily")
	m.GuessAccepted()
	m.GuessRejected()
	m.GuessRejected()
	m.RoundFinished("won", 3)
	m.SetActiveRounds(7)

	if got := testutil.ToFloat64(m.RoundsStarted.WithLabelValues("normal")); got != 2 {
		t.Fatalf("rounds_started normal = %v", got)
	}
	if got := testutil.ToFloat64(m.Guesses.WithLabelValues("rejected")); got != 2 {
		t.Fatalf("guesses rejected = %v", got)
	}
	if got := testutil.ToFloat64(m.RoundsFinished.WithLabelValues("won")); got != 1 {
		t.Fatalf("finished won = %v", got)
	}
	if got := testutil.ToFloat64(m.ActiveRounds); got != 7 {
		t.Fatalf("active = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New("wordle")
	m.RoundStarted("normal")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `wordle_rounds_started_total{mode="normal"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
