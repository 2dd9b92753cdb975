package integrals

import "math"

// Sanitize converts a sample vector into its JSON-transportable form: the
// output has the same length as the input, with nil exactly where the input
// is NaN or ±Inf and a pointer to the original value everywhere else.
func Sanitize(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}
