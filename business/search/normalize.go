package search

import "math"

// ScoreNormalizer maps raw backend scores onto [0, 1]. The keyword adapter
// applies one before candidates reach fusion, since raw lexical scores are
// backend-specific and unbounded.
type ScoreNormalizer func(scores []float64) []float64

// MinMaxNormalize scales over the returned batch. Sensitive to batch size and
// outliers, but matches what the storefront always served; swap in
// RationalNormalize for a batch-independent curve.
func MinMaxNormalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	out := make([]float64, len(scores))
	if hi == lo {
		// a flat batch carries no ordering information; treat all as full
		for i := range out {
			out[i] = 1.0
		}
		return out
	}

	for i, s := range scores {
		out[i] = (s - lo) / (hi - lo)
	}
	return out
}

// RationalNormalize maps |x| / (1 + |x|) into [0, 1) independent of the
// batch, the calibration used for ts_rank scores elsewhere in the ecosystem.
func RationalNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Abs(s) / (1 + math.Abs(s))
	}
	return out
}
