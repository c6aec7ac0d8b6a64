//go:build gocv
// +build gocv

package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// Webcam grabs single frames from a local camera device for the live-capture
// flow. One open device per Webcam; Close releases it.
type Webcam struct {
	device *gocv.VideoCapture
}

// OpenWebcam opens the camera with the given device ID (0 is the default
// camera on most systems).
func OpenWebcam(deviceID int) (*Webcam, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera device %d: %w", deviceID, err)
	}
	return &Webcam{device: device}, nil
}

// Grab reads one frame and returns it JPEG-encoded.
func (w *Webcam) Grab() ([]byte, error) {
	mat := gocv.NewMat()
	defer mat.Close()

	if ok := w.device.Read(&mat); !ok || mat.Empty() {
		return nil, errors.New("failed to read frame from camera")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	frame := make([]byte, len(buf.GetBytes()))
	copy(frame, buf.GetBytes())
	return frame, nil
}

// Close releases the camera device.
func (w *Webcam) Close() error {
	return w.device.Close()
}
