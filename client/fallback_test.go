package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevG10/AI-RetinoNet/models"
)

func TestSimulatedPredictionsShape(t *testing.T) {
	preds := SimulatedPredictions()

	require.Len(t, preds, len(models.ClassNames))
	for _, class := range models.ClassNames {
		require.Contains(t, preds, class)
	}

	total, err := preds.Total()
	require.NoError(t, err)
	require.InDelta(t, 100.0, total, 0.05)
}

func TestSimulatedPredictionsHealthyRange(t *testing.T) {
	// Pin the draws at both ends of the allowed range.
	low := simulatedPredictions(func() float64 { return 0 })
	healthy, err := models.ParsePercent(low["Healthy"])
	require.NoError(t, err)
	require.InDelta(t, 60.0, healthy, 0.01)

	high := simulatedPredictions(func() float64 { return 0.999999 })
	healthy, err = models.ParsePercent(high["Healthy"])
	require.NoError(t, err)
	require.InDelta(t, 90.0, healthy, 0.01)

	// The healthy weight always dominates the simulated set.
	top, _, err := SimulatedPredictions().TopClass()
	require.NoError(t, err)
	require.Equal(t, "Healthy", top)
}
