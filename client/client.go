package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/DevG10/AI-RetinoNet/models"
)

// DefaultTimeout bounds every API call. Analysis of a cold backend can take a
// while, so the window is generous.
const DefaultTimeout = 30 * time.Second

// liveCaptureFilename is the filename convention the backend keys on to return
// the processed frame instead of predictions.
const liveCaptureFilename = "live_captured_image.jpg"

// Client is the single HTTP abstraction for the RetinoNet API. Every call site
// shares the same base URL and underlying *http.Client; nothing else in the
// module talks to the backend directly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. Passing a nil httpClient
// installs one with the default 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured API address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status performs one readiness check against GET /status.
func (c *Client) Status(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call status api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("status api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var status models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("failed to decode status response: %w", err)
	}
	return status.Status, nil
}

// Predict submits an image for analysis and returns the per-class predictions.
func (c *Client) Predict(ctx context.Context, upload models.Upload) (models.PredictionSet, error) {
	resp, err := c.postMultipart(ctx, "/predict/", nil, &upload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("predict api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var predictResp models.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}
	if len(predictResp.Predictions) == 0 {
		return nil, fmt.Errorf("predict response contained no predictions")
	}
	return predictResp.Predictions, nil
}

// ProcessCapture submits a live-captured frame to the same predict endpoint and
// returns the processed JPEG. The backend branches on the filename, so the
// frame is always sent under the live-capture name regardless of its origin.
func (c *Client) ProcessCapture(ctx context.Context, frame []byte) ([]byte, error) {
	upload := models.Upload{
		Filename:    liveCaptureFilename,
		ContentType: "image/jpeg",
		Data:        frame,
	}

	resp, err := c.postMultipart(ctx, "/predict/", nil, &upload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("predict api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	processed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed image: %w", err)
	}
	return processed, nil
}

// GenerateReport requests the PDF report for an analyzed image.
func (c *Client) GenerateReport(ctx context.Context, req models.GenerateReportRequest) ([]byte, error) {
	fields, err := predictionFields(req.Predictions)
	if err != nil {
		return nil, err
	}

	resp, err := c.postMultipart(ctx, "/generate_report/", fields, &req.Upload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("report api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report pdf: %w", err)
	}
	return pdf, nil
}

// SendReport asks the backend to email the PDF report. The address must pass
// ValidateEmail before any request is sent.
func (c *Client) SendReport(ctx context.Context, req models.SendReportRequest) error {
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}

	fields, err := predictionFields(req.Predictions)
	if err != nil {
		return err
	}
	fields["email"] = req.Email

	resp, err := c.postMultipart(ctx, "/send_report/", fields, &req.Upload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send_report api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// postMultipart builds and issues a multipart POST with optional form fields
// and an optional file part named "file".
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, upload *models.Upload) (*http.Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %q: %w", name, err)
		}
	}

	if upload != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, upload.Filename))
		header.Set("Content-Type", upload.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(upload.Data); err != nil {
			return nil, fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}
	return resp, nil
}

// predictionFields serializes a prediction set into the "predictions" form
// field the backend expects.
func predictionFields(preds models.PredictionSet) (map[string]string, error) {
	jsonBytes, err := json.Marshal(preds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predictions: %w", err)
	}
	return map[string]string{"predictions": string(jsonBytes)}, nil
}
