package mask

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Binarization threshold on 8-bit grayscale values.
const threshold = 128

// Mask is a binary per-pixel grid marking a region of interest.
type Mask struct {
	width  int
	height int
	cells  []bool
}

// New returns an all-false mask of the given dimensions.
func New(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

// At reports whether the cell at (x, y) is foreground. Out-of-bounds
// coordinates are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

// Set marks the cell at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.cells[y*m.width+x] = v
}

// Count returns the number of foreground cells.
func (m *Mask) Count() int {
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return n
}

// MinDistance returns 0 when (x, y) is a foreground cell, the minimum
// Euclidean distance to any foreground cell otherwise, and +Inf for an
// empty mask. Brute force over all foreground cells; fine at
// annotation-time scale.
func (m *Mask) MinDistance(x, y int) float64 {
	if m.At(x, y) {
		return 0
	}
	min := math.Inf(1)
	for cy := 0; cy < m.height; cy++ {
		for cx := 0; cx < m.width; cx++ {
			if !m.cells[cy*m.width+cx] {
				continue
			}
			dx := float64(cx - x)
			dy := float64(cy - y)
			if d := math.Sqrt(dx*dx + dy*dy); d < min {
				min = d
			}
		}
	}
	return min
}

// Load reads a grayscale mask image and binarizes it at the midpoint
// threshold. If the decoded dimensions differ from width x height the
// image is resized with nearest-neighbor resampling first.
func Load(path string, width, height int) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask '%s': %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask '%s': %v", path, err)
	}

	gray := toGray(img)
	if gray.Bounds().Dx() != width || gray.Bounds().Dy() != height {
		resized := image.NewGray(image.Rect(0, 0, width, height))
		xdraw.NearestNeighbor.Scale(resized, resized.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)
		gray = resized
	}

	m := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				m.cells[y*width+x] = true
			}
		}
	}
	return m, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return gray
}

// ImageSize reads just the dimensions of an image file.
func ImageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image '%s': %v", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header '%s': %v", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
