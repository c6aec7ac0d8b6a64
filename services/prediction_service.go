package services

import (
	"context"
	"fmt"
	"log"

	"github.com/DevG10/AI-RetinoNet/models"
)

// PredictionService implements the /predict contract: regular uploads get a
// per-class prediction set, live captures get the processed frame back.
type PredictionService interface {
	AnalyzeImage(ctx context.Context, upload models.Upload) (models.PredictionSet, error)
	ProcessLiveCapture(ctx context.Context, upload models.Upload) ([]byte, error)
}

type predictionService struct {
	model ModelService
}

// NewPredictionService wires the model into the analyze pipeline.
func NewPredictionService(model ModelService) PredictionService {
	return &predictionService{model: model}
}

// AnalyzeImage runs the full inference pipeline: crop to the retinal area,
// resize/normalize, run the model, format per-class percentages.
func (s *predictionService) AnalyzeImage(ctx context.Context, upload models.Upload) (models.PredictionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("SERVICE: analyzing image %s (%d bytes)", upload.Filename, len(upload.Data))

	// /status may still report not-ready; a direct predict warms the model
	// synchronously instead of failing the request.
	if err := s.model.Load(); err != nil {
		return nil, fmt.Errorf("model is not available: %w", err)
	}

	cropped, err := CropToRetinalArea(upload.Data)
	if err != nil {
		log.Printf("SERVICE WARN: retinal crop failed, using full image: %v", err)
		cropped = upload.Data
	}

	if printed, err := IsPrintedImage(cropped); err == nil && printed {
		log.Printf("SERVICE WARN: %s looks like a photographed printout", upload.Filename)
	}

	meta := s.model.Metadata()
	input, err := PreprocessImage(cropped, meta.ImageSize)
	if err != nil {
		return nil, err
	}

	probs, err := s.model.Predict(input)
	if err != nil {
		return nil, err
	}
	if len(probs) < len(meta.Classes) {
		return nil, fmt.Errorf("model returned %d probabilities for %d classes", len(probs), len(meta.Classes))
	}

	preds := models.PredictionSet{}
	for i, class := range meta.Classes {
		preds[class] = models.FormatPercent(float64(probs[i]))
	}
	log.Printf("SERVICE: analysis complete for %s", upload.Filename)
	return preds, nil
}

// ProcessLiveCapture crops the captured frame to the retinal area and returns
// it; the caller previews the processed frame before a regular analyze.
func (s *predictionService) ProcessLiveCapture(ctx context.Context, upload models.Upload) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Printf("SERVICE: processing live capture %s (%d bytes)", upload.Filename, len(upload.Data))

	cropped, err := CropToRetinalArea(upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to process captured frame: %w", err)
	}
	return cropped, nil
}
