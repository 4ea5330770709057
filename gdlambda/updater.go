// Package gdlambda implements the gradient-descent learner with
// eligibility traces (the GD-λ core): a weight vector and sparse trace
// maintained over tile-coded features, updated on-policy (SARSA(λ)) or
// off-policy (Watkins's Q(λ)).
//
// Per spec design note 9, this collapses what would otherwise be a deep
// inheritance hierarchy (ReinforcementLearning -> ...GDAbstract ->
// ...GDET -> SarsaETGD / QLearningETGD) into a single Updater
// parameterised by a trace-reset policy: SARSA(λ) never truncates the
// trace, Watkins Q(λ) truncates it on the first exploratory action.
package gdlambda

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/tilerl/errs"
	"github.com/samuelfneumann/tilerl/tilecode"
)

// Action is the constraint satisfied by discrete action types in this
// module: actions are enumerated 0, 1, 2, ..., numActions-1, matching
// the teacher's convention of action-indexed weight rows.
type Action interface {
	~int
}

// traceThreshold is ε_trace from spec design note 9: sparse trace
// entries whose magnitude falls below this are flushed rather than
// carried forward indefinitely.
const traceThreshold = 1e-6

// resetPolicy decides, given whether the action actually taken was
// exploratory (off the target policy's greedy choice), whether the
// eligibility trace should be truncated to zero before this step's
// decay. SARSA(λ) always returns false; Watkins's Q(λ) returns its
// argument unchanged.
type resetPolicy func(exploratory bool) bool

func sarsaReset(exploratory bool) bool   { return false }
func watkinsReset(exploratory bool) bool { return exploratory }

// Updater maintains the weight vector and eligibility trace for one
// learner and performs the per-step GD-λ update.
//
// Updater owns weights and trace exclusively: per spec §5, it must not
// be shared across goroutines without external synchronization.
type Updater[A Action] struct {
	StepSize   float64
	Discount   float64
	Lambda     float64
	NumActions int

	coder   tilecode.Coder
	weights []float64
	trace   map[int]float64
	reset   resetPolicy
}

// NewSARSA constructs an Updater implementing on-policy SARSA(λ): the
// trace is never truncated early, since the action used in the TD
// target is the action that will actually be taken next.
func NewSARSA[A Action](coder tilecode.Coder, numActions int, stepSize, discount, lambda float64) (*Updater[A], error) {
	return newUpdater[A](coder, numActions, stepSize, discount, lambda, sarsaReset)
}

// NewWatkins constructs an Updater implementing off-policy Watkins's
// Q(λ): the trace is truncated to zero whenever the action actually
// taken was exploratory (not the greedy action the target policy would
// have chosen), since credit cannot be assigned past an off-greedy
// action under Q(λ).
func NewWatkins[A Action](coder tilecode.Coder, numActions int, stepSize, discount, lambda float64) (*Updater[A], error) {
	return newUpdater[A](coder, numActions, stepSize, discount, lambda, watkinsReset)
}

func newUpdater[A Action](coder tilecode.Coder, numActions int, stepSize, discount, lambda float64, reset resetPolicy) (*Updater[A], error) {
	const op = "gdlambda.New"
	if numActions < 1 {
		return nil, errs.New(op, errs.InvalidConfig,
			fmt.Sprintf("numActions must be at least 1: got %v", numActions))
	}
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

	return &Updater[A]{
		StepSize:   stepSize,
		Discount:   discount,
		Lambda:     lambda,
		NumActions: numActions,
		coder:      coder,
		weights:    make([]float64, numActions*coder.Size()),
		trace:      make(map[int]float64),
		reset:      reset,
	}, nil
}

// Weights returns the Updater's weight vector, laid out as NumActions
// consecutive blocks of coder.Size() tile weights each. Mutating the
// returned slice mutates the Updater's weights.
func (u *Updater[A]) Weights() []float64 { return u.weights }

// Trace returns the current sparse eligibility trace, keyed by weight
// index. Callers must not mutate the returned map.
func (u *Updater[A]) Trace() map[int]float64 { return u.trace }

// featuresOf returns the K weight indices active for state-action pair
// (x, a): the coder's K state-tile indices, each shifted into the
// weight block belonging to action a.
func (u *Updater[A]) featuresOf(x []float64, a A) ([]int, error) {
	if int(a) < 0 || int(a) >= u.NumActions {
		return nil, errs.New("gdlambda.Updater.featuresOf", errs.InvalidConfig,
			fmt.Sprintf("action %v outside [0, %d)", a, u.NumActions))
	}

	base, err := u.coder.FeaturesOf(x)
	if err != nil {
		return nil, err
	}

	offset := int(a) * u.coder.Size()
	features := make([]int, len(base))
	for i, idx := range base {
		features[i] = idx + offset
	}
	return features, nil
}

// Value returns the linear action value of (x, a) under the current
// weights.
func (u *Updater[A]) Value(x []float64, a A) (float64, error) {
	features, err := u.featuresOf(x, a)
	if err != nil {
		return 0, err
	}
	var v float64
	for _, i := range features {
		v += u.weights[i]
	}
	return v, nil
}

// Reset clears the eligibility trace, as required at every episode
// boundary.
func (u *Updater[A]) Reset() {
	u.trace = make(map[int]float64)
}

// Update performs one GD-λ step on the transition (s, a) -> r -> (s', a'):
//
//  1. F = featuresOf(s, a), F' = featuresOf(s', a')
//  2. δ = r + γ*value(F') - value(F), with the second term taken as 0
//     when terminal is true
//  3. the trace is truncated per the Updater's reset policy, decayed by
//     γλ, and the entries in F set to 1 (replacing traces)
//  4. every weight with a nonzero trace entry is stepped by
//     (α / numTilings) * δ * trace[i]
//
// exploratory reports whether a' (the action that will actually be
// taken next) was chosen by exploration rather than by the greedy
// policy; it is consulted only by the Watkins(λ) reset policy.
//
// Update returns the TD error δ.
func (u *Updater[A]) Update(s []float64, a A, r float64, sPrime []float64, aPrime A, terminal, exploratory bool) (float64, error) {
	const op = "gdlambda.Updater.Update"

	f, err := u.featuresOf(s, a)
	if err != nil {
		return 0, err
	}
	fPrime, err := u.featuresOf(sPrime, aPrime)
	if err != nil {
		return 0, err
	}

	var value, valuePrime float64
	for _, i := range f {
		value += u.weights[i]
	}
	if !terminal {
		for _, i := range fPrime {
			valuePrime += u.weights[i]
		}
	}

	delta := r + u.Discount*valuePrime - value
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, errs.New(op, errs.Numeric,
			fmt.Sprintf("TD error is not finite: %v", delta))
	}

	if u.reset(exploratory) {
		u.trace = make(map[int]float64)
	}

	decay := u.Discount * u.Lambda
	for i, e := range u.trace {
		e *= decay
		if math.Abs(e) < traceThreshold {
			delete(u.trace, i)
		} else {
			u.trace[i] = e
		}
	}
	for _, i := range f {
		u.trace[i] = 1
	}

	scale := u.StepSize / float64(u.coder.NumTilings())
	for i, e := range u.trace {
		if e == 0 {
			continue
		}
		w := u.weights[i] + scale*delta*e
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, errs.New(op, errs.Numeric,
				fmt.Sprintf("weight %d diverged to %v", i, w))
		}
		u.weights[i] = w
	}

	return delta, nil
}
