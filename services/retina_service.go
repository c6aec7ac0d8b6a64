//go:build gocv
// +build gocv

package services

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// printedEdgeThreshold is the Canny edge density above which a scan is treated
// as a photographed printout rather than a direct capture.
const printedEdgeThreshold = 0.08

// CropToRetinalArea narrows a capture to the region most likely to hold the
// eyes: the bounding box of the largest bright contour, trimmed to the band
// where the eyes sit on a detected face. If nothing usable is found, the image
// passes through unchanged.
func CropToRetinalArea(imageData []byte) ([]byte, error) {
	// On a decode error the Mat may be a zero value with no backing pointer;
	// never call its methods on that branch.
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return nil, errors.New("failed to decode image")
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("failed to decode image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blur, &thresh, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := image.Rectangle{}
	bestArea := 0
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if area := rect.Dx() * rect.Dy(); area > bestArea {
			best = rect
			bestArea = area
		}
	}

	// Require the detection to cover a meaningful share of the frame,
	// otherwise keep the full image.
	if bestArea < mat.Cols()*mat.Rows()/20 {
		return imageData, nil
	}

	// Focus on the eye band: drop the lower part of the detection and trim
	// the sides.
	x := best.Min.X + int(0.15*float64(best.Dx()))
	y := best.Min.Y + int(0.2*float64(best.Dy()))
	w := int(0.7 * float64(best.Dx()))
	h := int(0.3 * float64(best.Dy()))

	region := image.Rect(
		clamp(x, 0, mat.Cols()),
		clamp(y, 0, mat.Rows()),
		clamp(x+w, 0, mat.Cols()),
		clamp(y+h, 0, mat.Rows()),
	)
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return imageData, nil
	}

	cropped := mat.Region(region)
	defer cropped.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, cropped)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// IsPrintedImage flags scans that look like photographed printouts by their
// Canny edge density.
func IsPrintedImage(imageData []byte) (bool, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return false, errors.New("failed to decode image")
	}
	defer mat.Close()
	if mat.Empty() {
		return false, errors.New("failed to decode image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	total := edges.Cols() * edges.Rows()
	if total == 0 {
		return false, nil
	}
	ratio := float64(gocv.CountNonZero(edges)) / float64(total)
	return ratio > printedEdgeThreshold, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
