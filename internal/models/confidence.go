package models

// Confidence is the three-level ordinal attached to every score. It governs
// whether a result is accepted as-is or corroborated by further evidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Rank maps a confidence level to its ordinal (HIGH=3, MEDIUM=2, LOW=1).
// Unknown values rank 0 so they never satisfy a minimum.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether c meets or exceeds min in the HIGH>MEDIUM>LOW order.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.Rank() >= min.Rank()
}
