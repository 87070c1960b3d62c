package entities

// ConfidenceLevel buckets a 0-100 confidence score. The thresholds are the
// same at every display site: transcript lines, speaker badges, aggregate
// metrics, and warning banners.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"   // >= 90
	ConfidenceMedium ConfidenceLevel = "Medium" // 70-89
	ConfidenceLow    ConfidenceLevel = "Low"    // < 70
)

// BucketConfidence maps a score to its level. The mapping is exhaustive:
// every value lands in exactly one bucket.
func BucketConfidence(score float64) ConfidenceLevel {
	switch {
	case score >= 90:
		return ConfidenceHigh
	case score >= 70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Low-confidence banner thresholds. The two sites intentionally differ;
// kept separate pending product clarification.
const (
	// LowConfidenceBannerThreshold gates the transcript-view warning.
	LowConfidenceBannerThreshold = 10.0
	// LowConfidenceStatusThreshold gates the warning appended to the
	// initial audio-completion status message.
	LowConfidenceStatusThreshold = 20.0
)
