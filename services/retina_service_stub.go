//go:build !gocv
// +build !gocv

package services

// CropToRetinalArea passes the image through unchanged without the gocv build
// tag; the model sees the full frame.
func CropToRetinalArea(imageData []byte) ([]byte, error) {
	return imageData, nil
}

// IsPrintedImage cannot run without OpenCV and reports false.
func IsPrintedImage(imageData []byte) (bool, error) {
	return false, nil
}
