package pipeline

import "scoreahack/pkg/models"

// ScoreOriginality maps the closest match onto a 0 to 100 score. No matches
// means fully original.
func ScoreOriginality(ranked []models.RankedProject) models.Originality {
	var maxOverall float64
	for _, r := range ranked {
		if s := r.OverallScore(); s > maxOverall {
			maxOverall = s
		}
	}

	score := 100 - int(10*maxOverall)
	score = max(0, min(100, score))
	return models.Originality{Score: score, Band: BandFor(score)}
}

// BandFor buckets an originality score
func BandFor(score int) models.Band {
	switch {
	case score >= models.HighOriginalityThreshold:
		return models.BandHigh
	case score >= models.MediumOriginalityThreshold:
		return models.BandMedium
	default:
		return models.BandLow
	}
}
