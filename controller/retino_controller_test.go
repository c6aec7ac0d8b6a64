package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/DevG10/AI-RetinoNet/models"
	"github.com/DevG10/AI-RetinoNet/services"
)

type stubModel struct {
	loaded bool
}

func (s *stubModel) Load() error                             { return nil }
func (s *stubModel) LoadInBackground()                       {}
func (s *stubModel) IsLoaded() bool                          { return s.loaded }
func (s *stubModel) Predict(in []float32) ([]float32, error) { return nil, nil }
func (s *stubModel) Metadata() services.ModelMetadata        { return services.ModelMetadata{} }
func (s *stubModel) WatchModelFile(ctx context.Context)      {}
func (s *stubModel) Close()                                  {}

type stubPrediction struct {
	preds models.PredictionSet
}

func (s *stubPrediction) AnalyzeImage(ctx context.Context, upload models.Upload) (models.PredictionSet, error) {
	return s.preds, nil
}

func (s *stubPrediction) ProcessLiveCapture(ctx context.Context, upload models.Upload) ([]byte, error) {
	return []byte("processed-frame"), nil
}

type stubReport struct{}

func (s *stubReport) GenerateReport(req models.GenerateReportRequest) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

type stubEmail struct {
	sent int
}

func (s *stubEmail) SendReport(to string, pdf []byte) error {
	s.sent++
	return nil
}

func newTestRouter(model *stubModel, email *stubEmail) *gin.Engine {
	gin.SetMode(gin.TestMode)

	preds := models.PredictionSet{
		"Bilateral Retinoblastoma": "1.00%",
		"Left Eye Retinoblastoma":  "2.00%",
		"Right Eye Retinoblastoma": "3.00%",
		"Healthy":                  "94.00%",
	}
	c := NewRetinoController(model, &stubPrediction{preds: preds}, &stubReport{}, email)

	router := gin.New()
	RegisterRoutes(router, c)
	return router
}

func multipartBody(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestStatusReflectsModelState(t *testing.T) {
	router := newTestRouter(&stubModel{loaded: false}, &stubEmail{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Status)

	router = newTestRouter(&stubModel{loaded: true}, &stubEmail{})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Status)
}

func TestPostRoutesTolerateMissingTrailingSlash(t *testing.T) {
	router := newTestRouter(&stubModel{loaded: true}, &stubEmail{})

	for _, path := range []string{"/predict", "/generate_report", "/send_report"} {
		body, contentType := multipartBody(t, "scan.jpg", map[string]string{
			"email":       "patient@example.com",
			"predictions": `{"Healthy":"94.00%"}`,
		})
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestPredictRequiresFile(t *testing.T) {
	router := newTestRouter(&stubModel{loaded: true}, &stubEmail{})

	body, contentType := multipartBody(t, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/predict/", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictReturnsPredictions(t *testing.T) {
	router := newTestRouter(&stubModel{loaded: true}, &stubEmail{})

	body, contentType := multipartBody(t, "scan.jpg", nil)
	req := httptest.NewRequest(http.MethodPost, "/predict/", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "94.00%", resp.Predictions["Healthy"])
}

func TestPredictReturnsProcessedFrameForLiveCapture(t *testing.T) {
	router := newTestRouter(&stubModel{loaded: true}, &stubEmail{})

	body, contentType := multipartBody(t, "live_captured_image.jpg", nil)
	req := httptest.NewRequest(http.MethodPost, "/predict/", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	require.Equal(t, "processed-frame", w.Body.String())
}

func TestGenerateReportReturnsAttachment(t *testing.T) {
	router := newTestRouter(&stubModel{loaded: true}, &stubEmail{})

	body, contentType := multipartBody(t, "scan.jpg", map[string]string{
		"predictions": `{"Healthy":"94.00%"}`,
	})
	req := httptest.NewRequest(http.MethodPost, "/generate_report/", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "RetinoNet_Report.pdf")
}

func TestSendReportRejectsInvalidEmail(t *testing.T) {
	email := &stubEmail{}
	router := newTestRouter(&stubModel{loaded: true}, email)

	body, contentType := multipartBody(t, "scan.jpg", map[string]string{
		"email":       "not-an-email",
		"predictions": `{"Healthy":"94.00%"}`,
	})
	req := httptest.NewRequest(http.MethodPost, "/send_report/", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, email.sent)
}

func TestSendReportDeliversEmail(t *testing.T) {
	email := &stubEmail{}
	router := newTestRouter(&stubModel{loaded: true}, email)

	body, contentType := multipartBody(t, "scan.jpg", map[string]string{
		"email":       "patient@example.com",
		"predictions": `{"Healthy":"94.00%"}`,
	})
	req := httptest.NewRequest(http.MethodPost, "/send_report/", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, email.sent)
}
