package policy

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Softmax samples an action proportionally to exp(Q/T), subtracting
// the maximum value before exponentiating for numerical stability
// (per spec design note 9). If every weight underflows to 0 after
// max-subtraction, Softmax falls back to a uniform distribution over
// actions rather than leaving the distribution undefined — the spec
// leaves this case unspecified, and uniform is the natural default.
type Softmax[A ~int] struct {
	Temperature float64
	src         rand.Source
}

// NewSoftmax constructs a Softmax policy with the given temperature,
// seeded from seed.
func NewSoftmax[A ~int](temperature float64, seed uint64) *Softmax[A] {
	return &Softmax[A]{Temperature: temperature, src: rand.NewSource(seed)}
}

// SelectAction implements agent.Policy.
func (p *Softmax[A]) SelectAction(values map[A]float64) A {
	keys := sortedKeys(values)

	raw := make([]float64, len(keys))
	for i, a := range keys {
		raw[i] = values[a]
	}
	max := floats.Max(raw)

	weights := make([]float64, len(keys))
	for i, v := range raw {
		weights[i] = math.Exp((v - max) / p.Temperature)
	}
	if floats.Sum(weights) == 0 {
		for i := range weights {
			weights[i] = 1
		}
	}

	dist := distuv.NewCategorical(weights, p.src)
	return keys[int(dist.Rand())]
}
