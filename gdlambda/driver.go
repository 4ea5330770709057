package gdlambda

import (
	"github.com/samuelfneumann/tilerl/agent"
)

// ReinforcementLearningGD is the episode driver for a tile-coded
// linear learner: it selects actions via an attached policy and
// delegates weight updates to an Updater.
//
// Per spec design note 9, ReinforcementLearningGD never hands the
// policy a reference to itself, the Updater, or the weight vector: it
// builds a fresh action -> value snapshot on every GetAction call and
// passes only that. The policy is free to be swapped, tested, or
// shared without ever touching learner state directly.
type ReinforcementLearningGD[A Action] struct {
	updater *Updater[A]
	policy  agent.Policy[A]
}

// New constructs a ReinforcementLearningGD driving updater with the
// given policy. updater selects its SARSA(λ) or Watkins Q(λ) semantics
// at construction (see NewSARSA, NewWatkins).
func New[A Action](updater *Updater[A], policy agent.Policy[A]) *ReinforcementLearningGD[A] {
	return &ReinforcementLearningGD[A]{updater: updater, policy: policy}
}

// GetAction enumerates actions, builds their Q-value snapshot via the
// underlying Updater, and delegates the choice to the attached policy.
func (r *ReinforcementLearningGD[A]) GetAction(state []float64, actions []A) (A, error) {
	values := make(map[A]float64, len(actions))
	for _, a := range actions {
		v, err := r.updater.Value(state, a)
		if err != nil {
			var zero A
			return zero, err
		}
		values[a] = v
	}
	return r.policy.SelectAction(values), nil
}

// Update performs the GD update for the transition (lastState,
// lastAction) -> reward -> (state, action). exploratory reports
// whether action was chosen by exploration rather than the greedy
// policy; it only affects Watkins Q(λ) learners. Update returns the TD
// error.
func (r *ReinforcementLearningGD[A]) Update(lastState []float64, lastAction A, reward float64, state []float64, action A, terminal, exploratory bool) (float64, error) {
	return r.updater.Update(lastState, lastAction, reward, state, action, terminal, exploratory)
}

// Reset clears the eligibility trace, as required at every episode
// boundary.
func (r *ReinforcementLearningGD[A]) Reset() {
	r.updater.Reset()
}

// Value returns the linear action value of (state, a) under the
// learner's current weights; exposed for tests and diagnostics.
func (r *ReinforcementLearningGD[A]) Value(state []float64, a A) (float64, error) {
	return r.updater.Value(state, a)
}
