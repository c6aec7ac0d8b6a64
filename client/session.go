package client

import (
	"context"
	"fmt"

	"github.com/DevG10/AI-RetinoNet/models"
)

// CaptureState is the live-capture flow's position: live feed, frame held,
// submit in flight, or result shown.
type CaptureState string

const (
	CaptureIdle       CaptureState = "idle"
	CaptureCaptured   CaptureState = "captured"
	CaptureProcessing CaptureState = "processing"
	CaptureDone       CaptureState = "done"
)

// CaptureSession drives the capture → retake → submit flow against the shared
// analyzer. A session is single-goroutine: it mirrors one user's interaction.
type CaptureSession struct {
	analyzer *Analyzer
	state    CaptureState
	frame    []byte
	result   *models.AnalysisResult
}

// NewCaptureSession starts a session on the live feed.
func NewCaptureSession(analyzer *Analyzer) *CaptureSession {
	return &CaptureSession{analyzer: analyzer, state: CaptureIdle}
}

// State returns the current flow position.
func (s *CaptureSession) State() CaptureState {
	return s.state
}

// Result returns the analysis once the session is done, nil before that.
func (s *CaptureSession) Result() *models.AnalysisResult {
	return s.result
}

// Capture holds a frame taken from the camera and leaves the live feed.
func (s *CaptureSession) Capture(frame []byte) error {
	if s.state != CaptureIdle {
		return fmt.Errorf("cannot capture in state %q", s.state)
	}
	if len(frame) == 0 {
		return ErrEmptyUpload
	}
	s.frame = frame
	s.state = CaptureCaptured
	return nil
}

// Retake discards the held frame and returns to the live feed. It is allowed
// from any state except while a submit is in flight.
func (s *CaptureSession) Retake() error {
	if s.state == CaptureProcessing {
		return fmt.Errorf("cannot retake while processing")
	}
	s.frame = nil
	s.result = nil
	s.state = CaptureIdle
	return nil
}

// Submit first sends the frame through the capture-processing path (the
// backend crops it to the retinal area), then runs the processed frame through
// the same analyze contract as a picked file, so a capture gets a real
// analysis rather than placeholder numbers.
func (s *CaptureSession) Submit(ctx context.Context) (*models.AnalysisResult, error) {
	if s.state != CaptureCaptured {
		return nil, fmt.Errorf("cannot submit in state %q", s.state)
	}

	s.state = CaptureProcessing
	frame := s.frame
	if processed, err := s.analyzer.client.ProcessCapture(ctx, s.frame); err == nil {
		frame = processed
	}

	result, err := s.analyzer.Analyze(ctx, models.Upload{
		Filename:    "capture.jpg",
		ContentType: "image/jpeg",
		Data:        frame,
	})
	if err != nil {
		// A failed submit leaves the frame held so the user can retry or retake.
		s.state = CaptureCaptured
		return nil, err
	}

	s.result = result
	s.state = CaptureDone
	return result, nil
}
