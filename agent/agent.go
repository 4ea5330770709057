// Package agent defines the narrow interfaces shared by learners and
// policies in this module.
//
// The Policy and Config interfaces here are intentionally thinner than
// a full agent-glue-loop framework would need: a learner holds the
// Policy it drives action selection with, but a Policy never holds a
// reference to the learner that feeds it. The learner passes plain data
// (an action-value snapshot) at call time, breaking the cyclic
// reference a naive design would otherwise have.
package agent

// Policy selects an action given a read-only snapshot of action values.
// A is the action type, which must be comparable so it can key the
// snapshot map.
//
// Implementations never see the learner, coder, or weight vector that
// produced the snapshot: they receive values and return a choice.
type Policy[A comparable] interface {
	// SelectAction chooses an action from the action -> value snapshot.
	// values is never mutated by SelectAction.
	SelectAction(values map[A]float64) A
}

// Config represents a configuration for constructing a learner or
// coder. Validate is the only behaviour required: the registration,
// serialization, and factory machinery a larger agent framework would
// add on top is out of scope here.
type Config interface {
	// Validate returns a non-nil error describing why the configuration
	// is invalid, or nil if it is valid.
	Validate() error
}
