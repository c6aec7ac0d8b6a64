package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	ort "github.com/yalue/onnxruntime_go"
)

// ModelMetadata describes the exported ONNX model: tensor shapes, the class
// order, and the square input image size.
type ModelMetadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// ModelService owns the inference session. Loading can happen in the
// background so /status can answer false while the model warms up; cloud hosts
// that spin instances down cold-start through exactly this path.
type ModelService interface {
	Load() error
	LoadInBackground()
	IsLoaded() bool
	Predict(input []float32) ([]float32, error)
	Metadata() ModelMetadata
	WatchModelFile(ctx context.Context)
	Close()
}

type onnxModelService struct {
	modelPath    string
	metadataPath string

	mu           sync.Mutex
	loaded       bool
	metadata     ModelMetadata
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewModelService creates the service without touching the model file yet.
// Call LoadInBackground (or the first Predict) to actually load it.
func NewModelService(modelPath, metadataPath string) ModelService {
	return &onnxModelService{
		modelPath:    modelPath,
		metadataPath: metadataPath,
	}
}

// LoadInBackground starts loading the model on a separate goroutine.
func (s *onnxModelService) LoadInBackground() {
	go func() {
		start := time.Now()
		if err := s.Load(); err != nil {
			log.Printf("MODEL ERROR: background load failed: %v", err)
			return
		}
		log.Printf("MODEL: loaded successfully in %.2fs", time.Since(start).Seconds())
	}()
}

// IsLoaded reports readiness without triggering a load. This is what the
// /status endpoint returns.
func (s *onnxModelService) IsLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Predict runs the session over one preprocessed image and returns the raw
// per-class probabilities in metadata class order. It loads synchronously if
// the background load has not finished yet.
func (s *onnxModelService) Predict(input []float32) ([]float32, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(input) != len(s.inputTensor.GetData()) {
		return nil, fmt.Errorf("expected %d input values, got %d", len(s.inputTensor.GetData()), len(input))
	}
	copy(s.inputTensor.GetData(), input)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	output := s.outputTensor.GetData()
	probs := make([]float32, len(output))
	copy(probs, output)
	return probs, nil
}

// Metadata returns the loaded model description; zero value before load.
func (s *onnxModelService) Metadata() ModelMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// Load initializes the ONNX session once, double-checked so concurrent callers
// do not race the background loader.
func (s *onnxModelService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	return s.loadLocked()
}

func (s *onnxModelService) loadLocked() error {
	log.Printf("MODEL: loading model from %s", s.modelPath)

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize onnx environment: %w", err)
		}
	}

	metaFile, err := os.ReadFile(s.metadataPath)
	if err != nil {
		return fmt.Errorf("failed to read model metadata: %w", err)
	}
	var metadata ModelMetadata
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return fmt.Errorf("failed to parse model metadata: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(s.modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("failed to create onnx session: %w", err)
	}

	s.metadata = metadata
	s.session = session
	s.inputTensor = inputTensor
	s.outputTensor = outputTensor
	s.loaded = true
	return nil
}

// WatchModelFile watches the model file's directory and reloads the session
// when the weights are swapped in place (deploys copy new weights over the old
// file). Blocks until the context is cancelled, so run it on its own goroutine.
func (s *onnxModelService) WatchModelFile(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: failed to create model watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.modelPath) {
					continue
				}
				// Replacing a file is often a create-then-rename; treat both
				// the same way.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: model file changed: %s. Reloading...", event.Name)
					if err := s.reload(); err != nil {
						log.Printf("WATCHER ERROR: failed to reload model: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: context cancelled, shutting down model watcher.")
				return
			}
		}
	}()

	dir := filepath.Dir(s.modelPath)
	if err := watcher.Add(dir); err != nil {
		log.Printf("WATCHER ERROR: failed to watch %s: %v", dir, err)
		return
	}
	log.Printf("WATCHER: watching model directory: %s", dir)

	<-ctx.Done()
}

// reload tears the current session down and loads the new weights.
func (s *onnxModelService) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.loaded = false
	return s.loadLocked()
}

// Close releases the session and tensors.
func (s *onnxModelService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.loaded = false
	ort.DestroyEnvironment()
}

func (s *onnxModelService) closeLocked() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
