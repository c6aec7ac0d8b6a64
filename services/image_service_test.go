package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessImage(t *testing.T) {
	data := testPNG(t, 16, 16)

	input, err := PreprocessImage(data, 8)
	require.NoError(t, err)
	require.Len(t, input, 3*8*8)

	for _, v := range input {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
}

func TestPreprocessImageRejectsGarbage(t *testing.T) {
	_, err := PreprocessImage([]byte("definitely not an image"), 8)
	require.Error(t, err)
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	data, err := EncodeJPEG(img)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 4, decoded.Bounds().Dx())
}
