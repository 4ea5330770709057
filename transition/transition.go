// Package transition implements the learned environment model consulted
// by the Dyna planner: for one fixed (s,a) pair, a stochastic mapping
// from next-state to a visitation frequency and an observed reward,
// supporting weighted sampling of a plausible next state.
package transition

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/tilerl/errs"
)

// StateActionTransition models the next-state distribution observed
// after taking one fixed action in one fixed state. freq and reward
// always share the same key set; key insertion order is recorded in
// keys to give getNextState a fixed, reproducible iteration order
// across calls, as spec design note 9 requires.
type StateActionTransition[S comparable] struct {
	Greedy   float64
	StepSize float64

	freq   map[S]float64
	reward map[S]float64
	keys   []S
	rng    *rand.Rand
}

// New constructs a StateActionTransition with no recorded visits.
// greedy is the probability of sampling from the learned frequency
// distribution rather than uniformly at random in GetNextState.
// stepSize is the exponential-recency step applied to freq on Update.
func New[S comparable](greedy, stepSize float64, seed uint64) (*StateActionTransition[S], error) {
	const op = "transition.New"
	if greedy < 0 || greedy > 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("greedy must be in [0, 1]: got %v", greedy))
	}
	if stepSize <= 0 || stepSize > 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("stepSize must be in (0, 1]: got %v", stepSize))
	}

	return &StateActionTransition[S]{
		Greedy:   greedy,
		StepSize: stepSize,
		freq:     make(map[S]float64),
		reward:   make(map[S]float64),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Update folds one observed transition to sPrime with reward r into
// the model: sPrime's frequency is pushed toward 1 and every other
// key's frequency decays toward 0, both by StepSize; sPrime's reward
// is overwritten outright toward r.
func (m *StateActionTransition[S]) Update(sPrime S, r float64) {
	if _, ok := m.freq[sPrime]; !ok {
		m.freq[sPrime] = 0
		m.reward[sPrime] = 0
		m.keys = append(m.keys, sPrime)
	}

	for _, k := range m.keys {
		if k == sPrime {
			continue
		}
		m.freq[k] += m.StepSize * (0 - m.freq[k])
	}
	m.freq[sPrime] += m.StepSize * (1 - m.freq[sPrime])
	m.reward[sPrime] += r - m.reward[sPrime]
}

// GetNextState draws a plausible next state: with probability
// 1-Greedy it returns a uniformly random visited key; otherwise it
// draws from the learned frequency distribution, walking keys in
// their fixed insertion order.
func (m *StateActionTransition[S]) GetNextState() (S, error) {
	var zero S
	const op = "transition.StateActionTransition.GetNextState"
	if len(m.keys) == 0 {
		return zero, errs.New(op, errs.ModelEmpty, "model has no recorded visits")
	}

	if m.rng.Float64() > m.Greedy {
		return m.keys[m.rng.Intn(len(m.keys))], nil
	}

	freqs := make([]float64, len(m.keys))
	for i, k := range m.keys {
		freqs[i] = m.freq[k]
	}
	total := floats.Sum(freqs)
	if total <= 0 {
		return m.keys[m.rng.Intn(len(m.keys))], nil
	}

	v := distuv.Uniform{Min: 0, Max: total, Src: m.rng}.Rand()
	var running float64
	for _, k := range m.keys {
		running += m.freq[k]
		if v < running {
			return k, nil
		}
	}
	return m.keys[len(m.keys)-1], nil
}

// GetReward returns the model's current reward estimate for s.
func (m *StateActionTransition[S]) GetReward(s S) (float64, error) {
	r, ok := m.reward[s]
	if !ok {
		return 0, errs.New("transition.StateActionTransition.GetReward",
			errs.ModelMissingKey, fmt.Sprintf("state %v never visited", s))
	}
	return r, nil
}
