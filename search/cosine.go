package search

import "math"

// CosineSimilarity returns the cosine of the angle between a and b computed
// in float64 and clamped to [-1, 1]. The second result is false when the
// score is undefined: mismatched or empty vectors, or a zero-norm vector.
func CosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0, false
	}
	return max(-1, min(1, score)), true
}

// rankKey orders scores so undefined ones sort below every defined score.
func rankKey(score float64, defined bool) float64 {
	if !defined {
		return math.Inf(-1)
	}
	return score
}

// reportedScore is the score exposed to callers.
func reportedScore(score float64, defined bool) float64 {
	if !defined {
		return -1
	}
	return score
}
