package jobfeed

// FitScore converts a cosine distance into a fit percentage:
// 100 * (1 - distance), clamped to [0,100]. Distances outside [0,2] should
// not occur for normalized vectors and are clamped rather than rejected.
func FitScore(cosineDistance float64) float64 {
	return ClampScore(100 * (1 - cosineDistance))
}

// ClampScore bounds an already-computed fit score to [0,100].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
