package indexer

import "math"

// NormalizeVector returns v scaled to unit length.
// A zero vector yields a zero vector of the same length.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	result := make([]float32, len(v))
	if sum == 0 {
		return result
	}

	inv := 1 / math.Sqrt(sum)
	for i, val := range v {
		result[i] = float32(float64(val) * inv)
	}
	return result
}
