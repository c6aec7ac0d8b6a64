//go:build !gocv
// +build !gocv

package capture

import "errors"

// Webcam is the no-OpenCV stand-in; every operation reports that the gocv
// build tag is required for live capture.
type Webcam struct{}

// OpenWebcam fails without the gocv build tag.
func OpenWebcam(deviceID int) (*Webcam, error) {
	_ = deviceID
	return nil, errors.New("live capture requires the gocv build tag")
}

// Grab fails without the gocv build tag.
func (w *Webcam) Grab() ([]byte, error) {
	return nil, errors.New("live capture requires the gocv build tag")
}

// Close is a no-op on the stub.
func (w *Webcam) Close() error {
	return nil
}
