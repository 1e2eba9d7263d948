package vision

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// ExternalContours counts the outermost foreground blobs of m: 8-connected
// foreground components that touch the image border or the background
// region connected to it. Blobs nested inside another blob's hole are not
// counted.
func ExternalContours(m Mask) int {
	n := m.W * m.H
	if n == 0 {
		return 0
	}

	// Background reachable from the border, 4-connected.
	exterior := make([]bool, n)
	queue := make([]int, 0, 2*(m.W+m.H))
	push := func(x, y int) {
		i := y*m.W + x
		if m.Px[i] || exterior[i] {
			return
		}
		exterior[i] = true
		queue = append(queue, i)
	}
	for x := 0; x < m.W; x++ {
		push(x, 0)
		push(x, m.H-1)
	}
	for y := 0; y < m.H; y++ {
		push(0, y)
		push(m.W-1, y)
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%m.W, i/m.W
		if x > 0 {
			push(x-1, y)
		}
		if x+1 < m.W {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y+1 < m.H {
			push(x, y+1)
		}
	}

	seen := make([]bool, n)
	count := 0
	for start := 0; start < n; start++ {
		if !m.Px[start] || seen[start] {
			continue
		}
		outer := false
		seen[start] = true
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := i%m.W, i/m.W
			if x == 0 || y == 0 || x == m.W-1 || y == m.H-1 {
				outer = true
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.W || ny >= m.H {
						continue
					}
					j := ny*m.W + nx
					if !m.Px[j] {
						if exterior[j] && (dx == 0 || dy == 0) {
							outer = true
						}
						continue
					}
					if !seen[j] {
						seen[j] = true
						queue = append(queue, j)
					}
				}
			}
		}
		if outer {
			count++
		}
	}
	return count
}

// HoughParams tunes circle detection on an analysis-sized grayscale frame.
type HoughParams struct {
	EdgeThreshold float64 // Sobel magnitude for a pixel to count as an edge
	CenterVotes   int     // accumulator votes for a center candidate
	MinRadius     int
	MaxRadius     int     // 0 means half of the shorter side
	MinDist       float64 // 0 means an eighth of the height
	MinSupport    float64 // fraction of the circumference that must lie on edges
}

var DefaultHoughParams = HoughParams{
	EdgeThreshold: 100,
	CenterVotes:   30,
	MinRadius:     4,
	MinSupport:    0.35,
}

type center struct {
	x, y, votes int
}

// HoughCircles counts circles in g with the gradient Hough transform: edge
// pixels vote for centers along their gradient, strong centers are kept at a
// minimum distance apart, and each keeps its best supported radius.
func HoughCircles(g *image.Gray, p HoughParams) int {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	maxR := p.MaxRadius
	if maxR <= 0 {
		maxR = min(w, h) / 2
	}
	minDist := p.MinDist
	if minDist <= 0 {
		minDist = float64(h) / 8
	}
	if maxR < p.MinRadius {
		return 0
	}

	blurred := imaging.Blur(g, 1.2)
	lum := func(x, y int) float64 {
		return float64(blurred.Pix[y*blurred.Stride+x*4])
	}

	type edge struct{ x, y int }
	var edges []edge
	acc := make([]int, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := lum(x+1, y-1) + 2*lum(x+1, y) + lum(x+1, y+1) -
				lum(x-1, y-1) - 2*lum(x-1, y) - lum(x-1, y+1)
			gy := lum(x-1, y+1) + 2*lum(x, y+1) + lum(x+1, y+1) -
				lum(x-1, y-1) - 2*lum(x, y-1) - lum(x+1, y-1)
			mag := math.Hypot(gx, gy)
			if mag < p.EdgeThreshold {
				continue
			}
			edges = append(edges, edge{x, y})
			dx, dy := gx/mag, gy/mag
			for _, sign := range [2]float64{1, -1} {
				for r := p.MinRadius; r <= maxR; r++ {
					cx := int(math.Round(float64(x) + sign*float64(r)*dx))
					cy := int(math.Round(float64(y) + sign*float64(r)*dy))
					if cx < 0 || cy < 0 || cx >= w || cy >= h {
						break
					}
					acc[cy*w+cx]++
				}
			}
		}
	}

	var cands []center
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := acc[y*w+x]
			if v < p.CenterVotes {
				continue
			}
			if v > acc[y*w+x-1] && v >= acc[y*w+x+1] && v > acc[(y-1)*w+x] && v >= acc[(y+1)*w+x] {
				cands = append(cands, center{x, y, v})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].votes > cands[j].votes })

	var kept []center
	support := make([]int, maxR+2)
	for _, c := range cands {
		far := true
		for _, k := range kept {
			if math.Hypot(float64(c.x-k.x), float64(c.y-k.y)) < minDist {
				far = false
				break
			}
		}
		if !far {
			continue
		}
		for i := range support {
			support[i] = 0
		}
		for _, e := range edges {
			d := int(math.Round(math.Hypot(float64(e.x-c.x), float64(e.y-c.y))))
			if d >= p.MinRadius && d <= maxR {
				support[d]++
			}
		}
		bestR, bestN := 0, 0
		for r := p.MinRadius; r <= maxR; r++ {
			if support[r] > bestN {
				bestR, bestN = r, support[r]
			}
		}
		if bestR == 0 || float64(bestN) < p.MinSupport*2*math.Pi*float64(bestR) {
			continue
		}
		kept = append(kept, c)
	}
	return len(kept)
}

// ShapeDensity scores a frame by the number of detected circles plus the
// number of external contours of its Otsu-thresholded grayscale image.
func ShapeDensity(img image.Image) int {
	g := Gray(Downscale(img, AnalysisWidth))
	return HoughCircles(g, DefaultHoughParams) + ExternalContours(Binarize(g, Otsu(g)))
}
