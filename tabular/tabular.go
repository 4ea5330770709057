// Package tabular implements the tabular sibling of gdlambda: a
// Q-table and eligibility trace over hashable state-action pairs,
// updated on-policy (SARSA(λ)) or off-policy (Watkins's Q(λ)). It
// serves as the inner learner driven by both real and simulated
// transitions in the Dyna planner.
package tabular

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/tilerl/errs"
)

const traceThreshold = 1e-6

type resetPolicy func(exploratory bool) bool

func sarsaReset(exploratory bool) bool   { return false }
func watkinsReset(exploratory bool) bool { return exploratory }

// key identifies one state-action pair in the Q-table and trace.
type key[S comparable, A comparable] struct {
	s S
	a A
}

// Updater maintains a Q-table and eligibility trace over state-action
// pairs (S, A), both of which need only be comparable: unlike
// gdlambda.Updater, no feature extraction is involved, so states need
// not be expressed as float64 vectors.
type Updater[S comparable, A comparable] struct {
	StepSize float64
	Discount float64
	Lambda   float64

	q     map[key[S, A]]float64
	trace map[key[S, A]]float64
	reset resetPolicy
}

// NewSARSA constructs an Updater implementing on-policy SARSA(λ).
func NewSARSA[S comparable, A comparable](stepSize, discount, lambda float64) (*Updater[S, A], error) {
	return newUpdater[S, A](stepSize, discount, lambda, sarsaReset)
}

// NewWatkins constructs an Updater implementing off-policy Watkins's
// Q(λ): the trace is truncated to zero whenever the action actually
// taken was exploratory.
func NewWatkins[S comparable, A comparable](stepSize, discount, lambda float64) (*Updater[S, A], error) {
	return newUpdater[S, A](stepSize, discount, lambda, watkinsReset)
}

func newUpdater[S comparable, A comparable](stepSize, discount, lambda float64, reset resetPolicy) (*Updater[S, A], error) {
	const op = "tabular.New"
	if stepSize <= 0 || stepSize > 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("stepSize must be in (0, 1]: got %v", stepSize))
	}
	if discount < 0 || discount > 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("discount must be in [0, 1]: got %v", discount))
	}
	if lambda < 0 || lambda > 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("lambda must be in [0, 1]: got %v", lambda))
	}

	return &Updater[S, A]{
		StepSize: stepSize,
		Discount: discount,
		Lambda:   lambda,
		q:        make(map[key[S, A]]float64),
		trace:    make(map[key[S, A]]float64),
		reset:    reset,
	}, nil
}

// Value returns the current Q-table estimate of (s, a); unvisited
// pairs default to 0.
func (u *Updater[S, A]) Value(s S, a A) float64 {
	return u.q[key[S, A]{s, a}]
}

// Values builds a read-only action -> value snapshot for s over
// actions, suitable for handing to an agent.Policy.
func (u *Updater[S, A]) Values(s S, actions []A) map[A]float64 {
	values := make(map[A]float64, len(actions))
	for _, a := range actions {
		values[a] = u.Value(s, a)
	}
	return values
}

// Reset clears the eligibility trace, as required at every episode
// boundary.
func (u *Updater[S, A]) Reset() {
	u.trace = make(map[key[S, A]]float64)
}

// Update performs one tabular GD-λ step on the transition
// (s, a) -> r -> (s', a'), mirroring gdlambda.Updater.Update but over
// a direct Q-table instead of tile-coded linear weights.
func (u *Updater[S, A]) Update(s S, a A, r float64, sPrime S, aPrime A, terminal, exploratory bool) (float64, error) {
	const op = "tabular.Updater.Update"

	k := key[S, A]{s, a}
	kPrime := key[S, A]{sPrime, aPrime}

	value := u.q[k]
	var valuePrime float64
	if !terminal {
		valuePrime = u.q[kPrime]
	}

	delta := r + u.Discount*valuePrime - value
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, errs.New(op, errs.Numeric, fmt.Sprintf("TD error is not finite: %v", delta))
	}

	if u.reset(exploratory) {
		u.trace = make(map[key[S, A]]float64)
	}

	decay := u.Discount * u.Lambda
	for tk, e := range u.trace {
		e *= decay
		if math.Abs(e) < traceThreshold {
			delete(u.trace, tk)
		} else {
			u.trace[tk] = e
		}
	}
	u.trace[k] = 1

	for tk, e := range u.trace {
		w := u.q[tk] + u.StepSize*delta*e
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, errs.New(op, errs.Numeric, fmt.Sprintf("Q-value for %v diverged to %v", tk, w))
		}
		u.q[tk] = w
	}

	return delta, nil
}
