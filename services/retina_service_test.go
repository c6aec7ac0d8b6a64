//go:build gocv
// +build gocv

package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCropToRetinalAreaRejectsGarbage(t *testing.T) {
	// Must error cleanly, not fault on an unbacked Mat.
	_, err := CropToRetinalArea([]byte("not an image at all"))
	require.Error(t, err)

	_, err = CropToRetinalArea(nil)
	require.Error(t, err)
}

func TestIsPrintedImageRejectsGarbage(t *testing.T) {
	_, err := IsPrintedImage([]byte("not an image at all"))
	require.Error(t, err)
}
