package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
)

const markerRadius = 8

// Render composites a review image: the sample image with the mask
// region tinted red and circle markers for the guessed and true
// positions (guess yellow, truth green).
func Render(img image.Image, m *mask.Mask, guess, truth *dataset.Point) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			px := x - bounds.Min.X
			py := y - bounds.Min.Y
			c := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
			if m != nil && m.At(px, py) {
				// 40% red tint over mask cells
				c.R = uint8((uint32(c.R)*6 + 255*4) / 10)
				c.G = uint8(uint32(c.G) * 6 / 10)
				c.B = uint8(uint32(c.B) * 6 / 10)
			}
			dst.SetRGBA(px, py, c)
		}
	}

	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetLineWidth(2)

	if guess != nil {
		gc.SetStrokeColor(color.RGBA{255, 255, 0, 255})
		draw2dkit.Circle(gc, float64(guess.X), float64(guess.Y), markerRadius)
		gc.Stroke()
	}
	if truth != nil {
		gc.SetStrokeColor(color.RGBA{0, 255, 0, 255})
		draw2dkit.Circle(gc, float64(truth.X), float64(truth.Y), markerRadius)
		gc.Stroke()
	}

	return dst
}

// RenderFile loads the image, renders the overlay and encodes it as
// JPEG.
func RenderFile(imagePath string, m *mask.Mask, guess, truth *dataset.Point, outPath string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open image '%s': %v", imagePath, err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode image '%s': %v", imagePath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create overlay '%s': %v", outPath, err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, Render(img, m, guess, truth), &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to encode overlay: %v", err)
	}
	return nil
}
