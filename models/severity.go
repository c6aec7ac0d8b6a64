package models

// Severity is the display band for a single probability. It is a rendering
// classification only and carries no diagnostic meaning of its own.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// SeverityFor bands a percentage (0-100 scale): below 40 is low, 40 up to but
// not including 70 is moderate, 70 and above is high.
func SeverityFor(percent float64) Severity {
	switch {
	case percent >= 70:
		return SeverityHigh
	case percent >= 40:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// Label returns the human-readable form used by the CLI table.
func (s Severity) Label() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityModerate:
		return "Moderate"
	default:
		return "Low"
	}
}

// Color returns the hex color associated with the band.
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "#EF4444"
	case SeverityModerate:
		return "#F59E0B"
	default:
		return "#10B981"
	}
}
