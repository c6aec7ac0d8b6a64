package models

// recommendations keys a fixed clinical note on the top-scoring class. The text
// is deliberately canned: generating medical advice dynamically is out of scope.
var recommendations = map[string]string{
	"Bilateral Retinoblastoma": "Seek immediate consultation with a specialist.",
	"Left Eye Retinoblastoma":  "Consult an ophthalmologist as soon as possible.",
	"Right Eye Retinoblastoma": "Immediate consultation with a specialist is recommended.",
	"Healthy":                  "Your scan appears normal, but regular checkups are advised.",
}

// RecommendationFor picks the note matching the highest-probability class.
func RecommendationFor(preds PredictionSet) string {
	top, _, err := preds.TopClass()
	if err != nil {
		return "Unable to determine recommendation due to an error."
	}
	if rec, ok := recommendations[top]; ok {
		return rec
	}
	return "No recommendation available."
}
