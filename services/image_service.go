package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// PreprocessImage decodes an uploaded image and converts it into the flat
// float32 tensor the model expects: resized to size x size, RGB normalized to
// [0,1], channel-first layout.
func PreprocessImage(imageData []byte, size int) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("invalid image format (supported: JPEG, PNG): %w", err)
	}

	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	channels := 3
	input := make([]float32, channels*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*width + x
			input[idx] = float32(r) / 65535.0
			input[width*height+idx] = float32(g) / 65535.0
			input[2*width*height+idx] = float32(b) / 65535.0
		}
	}
	return input, nil
}

// EncodeJPEG renders an image back to JPEG bytes for the live-capture response.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
