package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevG10/AI-RetinoNet/models"
)

func validUpload() models.Upload {
	return models.Upload{
		Filename:    "scan.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("fake-jpeg-bytes"),
	}
}

// newPredictServer returns a fake backend that counts predict requests and
// answers with a fixed prediction set.
func newPredictServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		require.Equal(t, "/predict/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		require.Equal(t, "scan.jpg", header.Filename)

		resp := models.PredictResponse{Predictions: models.PredictionSet{
			"Bilateral Retinoblastoma": "1.20%",
			"Left Eye Retinoblastoma":  "2.30%",
			"Right Eye Retinoblastoma": "4.50%",
			"Healthy":                  "92.00%",
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestAnalyzeRejectsNonImageBeforeAnyRequest(t *testing.T) {
	var requests atomic.Int64
	server := newPredictServer(t, &requests)
	defer server.Close()

	analyzer := NewAnalyzer(NewClient(server.URL, nil), DefaultOptions())

	upload := validUpload()
	upload.ContentType = "application/pdf"

	_, err := analyzer.Analyze(context.Background(), upload)
	require.ErrorIs(t, err, ErrNotAnImage)
	require.Equal(t, int64(0), requests.Load())
}

func TestAnalyzeRejectsOversizeFileBeforeAnyRequest(t *testing.T) {
	var requests atomic.Int64
	server := newPredictServer(t, &requests)
	defer server.Close()

	analyzer := NewAnalyzer(NewClient(server.URL, nil), DefaultOptions())

	upload := validUpload()
	upload.Data = make([]byte, MaxFileSize+1)

	_, err := analyzer.Analyze(context.Background(), upload)
	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Equal(t, int64(0), requests.Load())
}

func TestAnalyzeIssuesExactlyOneRequest(t *testing.T) {
	var requests atomic.Int64
	server := newPredictServer(t, &requests)
	defer server.Close()

	analyzer := NewAnalyzer(NewClient(server.URL, nil), DefaultOptions())

	result, err := analyzer.Analyze(context.Background(), validUpload())
	require.NoError(t, err)
	require.Equal(t, int64(1), requests.Load())

	require.Equal(t, models.SourceModel, result.Source)
	require.False(t, result.Simulated())
	require.Equal(t, "92.00%", result.Predictions["Healthy"])

	// The submitted file is retained for the report and email actions.
	require.Equal(t, validUpload().Data, result.Upload.Data)
}

func TestAnalyzeFallsBackToLabelledSimulatedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	analyzer := NewAnalyzer(NewClient(server.URL, nil), DefaultOptions())

	result, err := analyzer.Analyze(context.Background(), validUpload())
	require.NoError(t, err)
	require.True(t, result.Simulated())
	require.Equal(t, models.SourceSimulated, result.Source)

	// Exactly the fixed condition set, nothing else.
	require.Len(t, result.Predictions, len(models.ClassNames))
	for _, class := range models.ClassNames {
		require.Contains(t, result.Predictions, class)
	}

	total, err := result.Predictions.Total()
	require.NoError(t, err)
	require.InDelta(t, 100.0, total, 0.05)
}

func TestAnalyzeSurfacesFailureWhenFallbackDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.AllowSimulated = false
	analyzer := NewAnalyzer(NewClient(server.URL, nil), opts)

	_, err := analyzer.Analyze(context.Background(), validUpload())
	require.Error(t, err)
}

func TestAnalyzeSkipsValidationWhenDisabled(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.PredictResponse{Predictions: models.PredictionSet{"Healthy": "100.00%"}})
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.ValidateInput = false
	analyzer := NewAnalyzer(NewClient(server.URL, nil), opts)

	upload := validUpload()
	upload.ContentType = "application/octet-stream"

	_, err := analyzer.Analyze(context.Background(), upload)
	require.NoError(t, err)
	require.Equal(t, int64(1), requests.Load())
}
