package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/DevG10/AI-RetinoNet/models"
)

// MaxFileSize is the upload limit shared with the backend's multipart parser.
const MaxFileSize = 10 << 20

// Validation errors are returned before any network call is made.
var (
	ErrNotAnImage   = errors.New("file is not an image")
	ErrFileTooLarge = errors.New("file exceeds the 10MB limit")
	ErrEmptyUpload  = errors.New("no file data provided")
)

// Options configures an Analyzer. One orchestrator serves every submit
// surface; capability flags select the behavior per caller.
type Options struct {
	// MaxFileSize caps the upload size; zero means MaxFileSize (10MB).
	MaxFileSize int64
	// ValidateInput gates the pre-flight MIME/size checks.
	ValidateInput bool
	// AllowSimulated enables the labelled fallback result when the predict
	// call fails. When off, the failure is surfaced as an error instead.
	AllowSimulated bool
}

// DefaultOptions enables validation and the labelled simulated fallback.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:    MaxFileSize,
		ValidateInput:  true,
		AllowSimulated: true,
	}
}

// Analyzer orchestrates the submit flow for both picked files and captured
// frames: validate, predict, and on failure optionally fall back to an
// explicitly simulated result.
type Analyzer struct {
	client  *Client
	opts    Options
	mu      sync.Mutex
	simFunc func() models.PredictionSet
}

// NewAnalyzer creates an analyzer over the shared API client.
func NewAnalyzer(c *Client, opts Options) *Analyzer {
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = MaxFileSize
	}
	return &Analyzer{
		client:  c,
		opts:    opts,
		simFunc: SimulatedPredictions,
	}
}

// ValidateUpload applies the pre-flight checks: the content type must be an
// image and the payload must fit the size limit. It never touches the network.
func (a *Analyzer) ValidateUpload(upload models.Upload) error {
	if len(upload.Data) == 0 {
		return ErrEmptyUpload
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return fmt.Errorf("%w: got content type %q", ErrNotAnImage, upload.ContentType)
	}
	if int64(len(upload.Data)) > a.opts.MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(upload.Data))
	}
	return nil
}

// Analyze runs the full submit contract: exactly one predict request per call,
// with the submitted upload retained on the result for the report and email
// actions. Overlapping calls are serialized so a double submit cannot race.
func (a *Analyzer) Analyze(ctx context.Context, upload models.Upload) (*models.AnalysisResult, error) {
	if a.opts.ValidateInput {
		if err := a.ValidateUpload(upload); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	preds, err := a.client.Predict(ctx, upload)
	if err != nil {
		if !a.opts.AllowSimulated {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
		log.Printf("ANALYZER: predict failed, returning simulated result: %v", err)
		return &models.AnalysisResult{
			Predictions: a.simFunc(),
			Source:      models.SourceSimulated,
			Upload:      upload,
		}, nil
	}

	return &models.AnalysisResult{
		Predictions: preds,
		Source:      models.SourceModel,
		Upload:      upload,
	}, nil
}
