// Package render draws detection boxes onto the analyzed image.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/radai/radai/internal/ultralytics"
	"github.com/radai/radai/internal/verdict"
)

const outlineThickness = 3

var (
	colorStone  = color.RGBA{R: 255, A: 255}
	colorNormal = color.RGBA{G: 255, A: 255}
)

// DecodeError indicates the uploaded bytes are not a decodable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode image: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// Annotate decodes the source image and draws an unfilled rectangle for each
// detection with a complete box: green for normal-set labels, red otherwise.
// Detections with a missing coordinate are skipped. The input bytes are
// never modified.
func Annotate(imageBytes []byte, detections []ultralytics.Detection) (image.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	bounds := src.Bounds()
	annotated := image.NewRGBA(bounds)
	draw.Draw(annotated, bounds, src, bounds.Min, draw.Src)

	for _, det := range detections {
		if !det.Box.Complete() {
			continue
		}

		col := colorStone
		if verdict.IsNormalLabel(det.Name) {
			col = colorNormal
		}

		drawRect(annotated, int(*det.Box.X1), int(*det.Box.Y1), int(*det.Box.X2), int(*det.Box.Y2), col)
	}

	return annotated, nil
}

func drawRect(img *image.RGBA, x1, y1, x2, y2 int, col color.Color) {
	bounds := img.Bounds()

	setPixel := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.Set(x, y, col)
		}
	}

	for t := 0; t < outlineThickness; t++ {
		for x := x1; x <= x2; x++ {
			setPixel(x, y1+t)
			setPixel(x, y2-t)
		}
		for y := y1; y <= y2; y++ {
			setPixel(x1+t, y)
			setPixel(x2-t, y)
		}
	}
}
