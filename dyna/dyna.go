// Package dyna implements the Dyna planning architecture: it augments
// an inner tabular learner's real-environment updates with simulated
// updates drawn from a learned per-(state,action) environment model
// (see package transition), interleaving n planning updates with
// every real step.
package dyna

import (
	"fmt"

	"github.com/samuelfneumann/tilerl/agent"
	"github.com/samuelfneumann/tilerl/errs"
	"github.com/samuelfneumann/tilerl/tabular"
	"github.com/samuelfneumann/tilerl/transition"
	"golang.org/x/exp/rand"
)

// key identifies one (state, action) model entry.
type key[S comparable, A comparable] struct {
	s S
	a A
}

// Dyna owns a table of learned StateActionTransition models, one per
// visited (s,a) pair, plus an inner tabular learner. Per spec §4.6,
// the model table and the inner learner are exclusively owned by the
// Dyna planner and must not be shared across goroutines without
// external synchronization.
type Dyna[S comparable, A comparable] struct {
	// N is the number of simulated planning updates run per real
	// step (simulationIterationCount).
	N int
	// Greedy and StepSize configure every StateActionTransition
	// model created lazily on first visit to a (s,a) pair.
	Greedy, StepSize float64

	inner        *tabular.Updater[S, A]
	policy       agent.Policy[A]
	legalActions func(S) []A
	model        map[key[S, A]]*transition.StateActionTransition[S]
	keys         []key[S, A]
	rng          *rand.Rand
	seed         uint64
}

// New constructs a Dyna planner around inner, driving action
// selection during planning with policy. legalActions mirrors the
// environment's legalActions collaborator (spec §6): it gives the
// planner a candidate action set for any state reached during
// simulation, independent of which (s,a) pairs have already been
// visited. n is the number of simulated updates run after each real
// step; greedy and stepSize configure every lazily-created
// StateActionTransition model.
func New[S comparable, A comparable](inner *tabular.Updater[S, A], policy agent.Policy[A], legalActions func(S) []A, n int, greedy, stepSize float64, seed uint64) (*Dyna[S, A], error) {
	const op = "dyna.New"
	if n < 0 {
		return nil, errs.New(op, errs.InvalidConfig, fmt.Sprintf("n must be >= 0: got %v", n))
	}

	return &Dyna[S, A]{
		N:            n,
		Greedy:       greedy,
		StepSize:     stepSize,
		inner:        inner,
		policy:       policy,
		legalActions: legalActions,
		model:        make(map[key[S, A]]*transition.StateActionTransition[S]),
		rng:          rand.New(rand.NewSource(seed)),
		seed:         seed,
	}, nil
}

// Values exposes the inner learner's action-value snapshot for s,
// suitable for driving action selection outside the planner.
func (d *Dyna[S, A]) Values(s S, actions []A) map[A]float64 {
	return d.inner.Values(s, actions)
}

// Reset clears the inner learner's eligibility trace at an episode
// boundary. The learned model persists across episodes.
func (d *Dyna[S, A]) Reset() {
	d.inner.Reset()
}

// modelFor returns the StateActionTransition for (s,a), creating one
// lazily on first visit.
func (d *Dyna[S, A]) modelFor(s S, a A) *transition.StateActionTransition[S] {
	k := key[S, A]{s, a}
	m, ok := d.model[k]
	if !ok {
		d.seed++
		m, _ = transition.New[S](d.Greedy, d.StepSize, d.seed)
		d.model[k] = m
		d.keys = append(d.keys, k)
	}
	return m
}

// Update performs one real step: it updates the inner learner on the
// observed transition, folds the transition into that (s,a) pair's
// model, then runs N simulated planning updates sampled from the
// model table, per spec §4.6. It returns the real update's TD error.
func (d *Dyna[S, A]) Update(s S, a A, r float64, sPrime S, aPrime A, terminal, exploratory bool) (float64, error) {
	delta, err := d.inner.Update(s, a, r, sPrime, aPrime, terminal, exploratory)
	if err != nil {
		return 0, err
	}

	d.modelFor(s, a).Update(sPrime, r)

	for i := 0; i < d.N; i++ {
		if err := d.plan(); err != nil {
			return delta, err
		}
	}

	return delta, nil
}

// plan runs one simulated update: pick a visited (s,a) pair uniformly
// at random, sample a next state and reward from its model, choose
// the next action via the planner's policy, and update the inner
// learner on the simulated transition. Planning updates are always
// treated as on-policy (not exploratory), since ã is the policy's own
// greedy-or-exploring choice rather than a behaviourally forced action.
func (d *Dyna[S, A]) plan() error {
	const op = "dyna.Dyna.plan"
	if len(d.keys) == 0 {
		return errs.New(op, errs.ModelEmpty, "no (state, action) pairs visited yet")
	}

	k := d.keys[d.rng.Intn(len(d.keys))]
	m := d.model[k]

	sPrime, err := m.GetNextState()
	if err != nil {
		return err
	}
	r, err := m.GetReward(sPrime)
	if err != nil {
		return err
	}

	aPrime := d.policy.SelectAction(d.inner.Values(sPrime, d.legalActions(sPrime)))

	_, err = d.inner.Update(k.s, k.a, r, sPrime, aPrime, false, false)
	return err
}
