// Package policy implements the policy contracts recognised by this
// module's learners: ε-greedy and softmax action selection over a
// read-only action -> value snapshot.
//
// Neither policy holds a reference to the learner, coder, or weight
// vector that produced its snapshot (see spec design note 9); both
// only ever see a map[A]float64 at call time.
package policy

import (
	"sort"

	"golang.org/x/exp/rand"
)

// sortedKeys returns the keys of values in ascending order, giving a
// stable iteration order over actions regardless of map iteration
// order and a well-defined "smallest ordinal" for deterministic
// tie-breaks.
func sortedKeys[A ~int](values map[A]float64) []A {
	keys := make([]A, 0, len(values))
	for a := range values {
		keys = append(keys, a)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// argmax returns the smallest-ordinal action among those with maximal
// value in values, implementing the deterministic tie-break spec §4.4
// requires.
func argmax[A ~int](values map[A]float64) A {
	keys := sortedKeys(values)
	best := keys[0]
	bestVal := values[best]
	for _, a := range keys[1:] {
		if values[a] > bestVal {
			best, bestVal = a, values[a]
		}
	}
	return best
}

// EGreedy selects the greedy (argmax) action with probability 1-ε and
// a uniformly random action with probability ε.
type EGreedy[A ~int] struct {
	Epsilon float64
	rng     *rand.Rand
}

// NewEGreedy constructs an EGreedy policy with the given exploration
// probability, seeded from seed.
func NewEGreedy[A ~int](epsilon float64, seed uint64) *EGreedy[A] {
	return &EGreedy[A]{Epsilon: epsilon, rng: rand.New(rand.NewSource(seed))}
}

// SelectAction implements agent.Policy.
func (p *EGreedy[A]) SelectAction(values map[A]float64) A {
	keys := sortedKeys(values)
	if p.rng.Float64() < p.Epsilon {
		return keys[p.rng.Intn(len(keys))]
	}
	return argmax(values)
}

// Greedy always selects the argmax action, with the same deterministic
// tie-break as EGreedy. It is EGreedy with Epsilon == 0, kept distinct
// because it needs no RNG and is useful as a target policy during
// evaluation.
type Greedy[A ~int] struct{}

// SelectAction implements agent.Policy.
func (Greedy[A]) SelectAction(values map[A]float64) A {
	return argmax(values)
}
