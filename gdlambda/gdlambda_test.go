package gdlambda

import (
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/tilerl/errs"
	"github.com/samuelfneumann/tilerl/tilecode"
)

type action = int

const (
	forward  action = 0
	backward action = 1
)

func newCoder(t *testing.T) tilecode.Coder {
	t.Helper()
	dims := []tilecode.DimensionInfo{{
		Bounds:         r1.Interval{Min: 0, Max: 2},
		GridIdeal:      2,
		Generalisation: 1,
	}}
	c, err := tilecode.NewCorrect(dims, 1, rand.NewSource(1))
	if err != nil {
		t.Fatalf("NewCorrect: %v", err)
	}
	return c
}

// TestCorridorConvergence mirrors spec scenario S2 but over the
// tile-coded linear learner instead of the tabular one: a two-state
// corridor, reward +1 on reaching terminal, discount 1, stepSize 0.5,
// lambda 0.9. After at most 3 episodes the greedy action from the
// start state should be the one leading toward the terminal.
func TestCorridorConvergence(t *testing.T) {
	u, err := NewSARSA[action](newCoder(t), 2, 0.5, 1, 0.9)
	if err != nil {
		t.Fatalf("NewSARSA: %v", err)
	}

	episode := func() {
		u.Reset()
		if _, err := u.Update([]float64{0}, forward, 0, []float64{1}, forward, false, false); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if _, err := u.Update([]float64{1}, forward, 1, []float64{0}, forward, true, false); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		episode()
	}

	vForward, err := u.Value([]float64{0}, forward)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	vBackward, err := u.Value([]float64{0}, backward)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if vForward <= vBackward {
		t.Errorf("after 3 episodes Value(0,forward)=%v should exceed Value(0,backward)=%v", vForward, vBackward)
	}
}

// TestWatkinsTruncatesTraceOnExploration exercises spec scenario S4:
// Watkins's Q(lambda) must zero the trace after a forced exploratory
// action. TestSarsaNeverTruncatesTrace checks that SARSA(lambda) does not.
func TestWatkinsTruncatesTraceOnExploration(t *testing.T) {
	u, err := NewWatkins[action](newCoder(t), 2, 0.5, 0.9, 0.9)
	if err != nil {
		t.Fatalf("NewWatkins: %v", err)
	}

	if _, err := u.Update([]float64{0}, forward, 1, []float64{1}, forward, false, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(u.Trace()) == 0 {
		t.Fatal("expected a nonzero trace after the first update")
	}

	if _, err := u.Update([]float64{1}, forward, 1, []float64{0}, backward, false, true); err != nil {
		t.Fatalf("Update: %v", err)
	}

	featuresFirst, err := u.featuresOf([]float64{0}, forward)
	if err != nil {
		t.Fatalf("featuresOf: %v", err)
	}
	for _, i := range featuresFirst {
		if _, stillTraced := u.Trace()[i]; stillTraced {
			t.Error("Watkins Q(lambda) should truncate the trace on an exploratory action, stale entry survived")
		}
	}
}

func TestSarsaNeverTruncatesTrace(t *testing.T) {
	u, err := NewSARSA[action](newCoder(t), 2, 0.5, 0.9, 0.9)
	if err != nil {
		t.Fatalf("NewSARSA: %v", err)
	}

	if _, err := u.Update([]float64{0}, forward, 1, []float64{1}, forward, false, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	featuresFirst, err := u.featuresOf([]float64{0}, forward)
	if err != nil {
		t.Fatalf("featuresOf: %v", err)
	}

	// Even though this step is exploratory, SARSA(lambda) must not reset.
	if _, err := u.Update([]float64{1}, forward, 1, []float64{0}, backward, false, true); err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, i := range featuresFirst {
		if _, stillTraced := u.Trace()[i]; !stillTraced {
			t.Error("SARSA(lambda) must not truncate the trace on an exploratory action")
		}
	}
}

func TestInvalidActionRejected(t *testing.T) {
	u, err := NewSARSA[action](newCoder(t), 2, 0.5, 1, 0.9)
	if err != nil {
		t.Fatalf("NewSARSA: %v", err)
	}
	if _, err := u.Value([]float64{0}, 5); err == nil {
		t.Error("Value with an out-of-range action should fail")
	}
}

func TestInvalidHyperparameters(t *testing.T) {
	c := newCoder(t)
	if _, err := NewSARSA[action](c, 0, 0.5, 1, 0.9); !errs.IsInvalidConfig(err) {
		t.Errorf("numActions=0 should be rejected with InvalidConfig, got %v", err)
	}
	if _, err := NewSARSA[action](c, 2, 0, 1, 0.9); !errs.IsInvalidConfig(err) {
		t.Errorf("stepSize=0 should be rejected with InvalidConfig, got %v", err)
	}
	if _, err := NewSARSA[action](c, 2, 0.5, 1.5, 0.9); !errs.IsInvalidConfig(err) {
		t.Errorf("discount=1.5 should be rejected with InvalidConfig, got %v", err)
	}
}
