package tilecode

import "gonum.org/v1/gonum/mat"

// Value computes the linear value of x under weights: the sum of
// weights at the indices FeaturesOf(x) returns. weights must be at
// least c.Size() long.
//
// Weight storage belongs to the learner that owns a Coder (see the
// gdlambda package), not to the Coder itself — a Coder is pure
// feature extraction. Value is provided here so the linearity law
// (value(x) == sum of weights[i] for i in featuresOf(x)) can be
// checked directly against a Coder without depending on gdlambda.
// weights is a gonum vector so callers already holding their state as
// mat.VecDense (as environments commonly do) need no conversion.
func Value(c Coder, weights mat.Vector, x []float64) (float64, error) {
	features, err := c.FeaturesOf(x)
	if err != nil {
		return 0, err
	}

	var v float64
	for _, i := range features {
		v += weights.AtVec(i)
	}
	return v, nil
}
