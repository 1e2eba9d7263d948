// Package vision holds the small set of grayscale image measures the frame
// selectors score candidates with.
package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// AnalysisWidth is the width frames are downscaled to before shape analysis.
const AnalysisWidth = 240

// Gray returns the luminance plane of img.
func Gray(img image.Image) *image.Gray {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Downscale shrinks img to width w keeping the aspect ratio. Images already
// narrower than w are returned as-is.
func Downscale(img image.Image, w int) image.Image {
	if img.Bounds().Dx() <= w {
		return img
	}
	return imaging.Resize(img, w, 0, imaging.Box)
}

// Histogram is a normalized 256-bin grayscale histogram.
type Histogram [256]float64

// GrayHistogram counts gray levels of img and normalizes them so the bins sum to 1.
func GrayHistogram(img image.Image) Histogram {
	g := Gray(img)
	var h Histogram
	n := 0
	for y := 0; y < g.Rect.Dy(); y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+g.Rect.Dx()] {
			h[v]++
			n++
		}
	}
	if n == 0 {
		return h
	}
	for i := range h {
		h[i] /= float64(n)
	}
	return h
}

// Bhattacharyya returns the Bhattacharyya distance between two histograms in
// [0, 1]; 0 means identical distributions. Same formula as OpenCV's
// HISTCMP_BHATTACHARYYA.
func Bhattacharyya(a, b Histogram) float64 {
	var sa, sb, s float64
	for i := range a {
		sa += a[i]
		sb += b[i]
		s += math.Sqrt(a[i] * b[i])
	}
	if sa == 0 || sb == 0 {
		if sa == sb {
			return 0
		}
		return 1
	}
	d := 1 - s/math.Sqrt(sa*sb)
	if d < 0 {
		d = 0
	}
	return math.Sqrt(d)
}

// Otsu returns the threshold that maximizes between-class variance of g.
// Pixels strictly above it are foreground.
func Otsu(g *image.Gray) uint8 {
	var hist [256]int
	total := 0
	for y := 0; y < g.Rect.Dy(); y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+g.Rect.Dx()] {
			hist[v]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}
	var (
		sumB   float64
		wB     int
		best   float64
		thresh int
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			thresh = t
		}
	}
	return uint8(thresh)
}

// Binarize marks pixels of g above t.
func Binarize(g *image.Gray, t uint8) Mask {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	m := Mask{W: w, H: h, Px: make([]bool, w*h)}
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, v := range row {
			m.Px[y*w+x] = v > t
		}
	}
	return m
}

// Mask is a binary image in row-major order.
type Mask struct {
	W, H int
	Px   []bool
}
