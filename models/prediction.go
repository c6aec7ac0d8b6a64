package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ClassNames lists the model's output classes in tensor order. The order must
// match the training metadata; the report and fallback generators rely on it.
var ClassNames = []string{
	"Bilateral Retinoblastoma",
	"Left Eye Retinoblastoma",
	"Right Eye Retinoblastoma",
	"Healthy",
}

// PredictionSet maps a condition name to a formatted percentage, e.g. "87.21%".
// This mirrors the wire format of the /predict endpoint.
type PredictionSet map[string]string

// ResultSource tells a consumer whether predictions came from the model or were
// locally simulated after a failed inference call. The two must never be
// confused, so the source travels with every result.
type ResultSource string

const (
	SourceModel     ResultSource = "model"
	SourceSimulated ResultSource = "simulated"
)

// Upload is a submitted image: the raw bytes plus the metadata needed for
// validation and multipart encoding. It is retained on the analysis result so
// report and email actions can resend the same file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisResult is the outcome of one analyze action.
type AnalysisResult struct {
	Predictions PredictionSet
	Source      ResultSource
	Upload      Upload
}

// Simulated reports whether the predictions were fabricated client-side.
func (r *AnalysisResult) Simulated() bool {
	return r.Source == SourceSimulated
}

// FormatPercent renders a [0,1] probability the way the backend does: "12.34%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// ParsePercent converts a formatted percentage back into its numeric value
// (0-100 scale). The severity banding and recommendation lookup consume this.
func ParsePercent(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	return v, nil
}

// TopClass returns the condition with the highest probability, or an error if
// the set is empty or holds an unparseable value.
func (p PredictionSet) TopClass() (string, float64, error) {
	top := ""
	topVal := -1.0
	for class, pct := range p {
		v, err := ParsePercent(pct)
		if err != nil {
			return "", 0, err
		}
		if v > topVal {
			top = class
			topVal = v
		}
	}
	if top == "" {
		return "", 0, fmt.Errorf("empty prediction set")
	}
	return top, topVal, nil
}

// Total sums all percentages in the set (0-100 scale).
func (p PredictionSet) Total() (float64, error) {
	var sum float64
	for _, pct := range p {
		v, err := ParsePercent(pct)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}
