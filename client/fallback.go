package client

import (
	"math/rand"

	"github.com/DevG10/AI-RetinoNet/models"
)

// SimulatedPredictions fabricates a placeholder prediction set for when the
// inference call fails: a healthy weight drawn uniformly from [60%, 90%] with
// the remainder split unevenly across the three disease classes. The split is
// normalized so the set sums to exactly 100%. Results built from this set are
// always labelled SourceSimulated; they are a UX placeholder, not a diagnosis.
func SimulatedPredictions() models.PredictionSet {
	return simulatedPredictions(rand.Float64)
}

// simulatedPredictions takes the random source as a parameter so tests can pin
// the draw.
func simulatedPredictions(randFloat func() float64) models.PredictionSet {
	healthy := 0.60 + randFloat()*0.30
	remainder := 1.0 - healthy

	// Uneven split of the remainder, then scale so the three shares use it
	// exactly.
	shares := []float64{
		0.2 + randFloat()*0.4,
		0.1 + randFloat()*0.3,
		0.1 + randFloat()*0.2,
	}
	var total float64
	for _, s := range shares {
		total += s
	}

	preds := models.PredictionSet{}
	diseased := models.ClassNames[:len(models.ClassNames)-1]
	for i, class := range diseased {
		preds[class] = models.FormatPercent(remainder * shares[i] / total)
	}
	preds["Healthy"] = models.FormatPercent(healthy)
	return preds
}
