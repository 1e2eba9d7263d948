package frames

import (
	"fmt"
	"image"
	"image/draw"
	"sort"

	"github.com/forPelevin/vidarticle/internal/domain/vision"
	"github.com/forPelevin/vidarticle/internal/types"
)

// Selector picks representative frames for one topic window. Feed receives
// every decoded frame of the window in order; the frame is only valid during
// the call, so selectors Clone what they keep.
type Selector interface {
	Feed(frame image.Image, second int)
	Result() []image.Image
}

// NewSelector builds a fresh selector of the given strategy for [start, end].
func NewSelector(kind types.SelectorType, count, start, end int) (Selector, error) {
	switch kind {
	case types.SelectorUniform, "":
		return NewUniform(count, start, end), nil
	case types.SelectorSimilarity:
		return NewSimilarity(count, start, end), nil
	case types.SelectorShapeDensity:
		return NewShapeDensity(count, start, end), nil
	default:
		return nil, fmt.Errorf("unknown selector %q", kind)
	}
}

// Clone copies img into a new RGBA image.
func Clone(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Uniform captures frames at count seconds spread evenly over the window,
// the first half an interval after start.
type Uniform struct {
	targets map[int]bool // second -> claimed
	frames  []image.Image
}

func NewUniform(count, start, end int) *Uniform {
	u := &Uniform{targets: map[int]bool{}}
	if count <= 0 {
		return u
	}
	step := (end - start) / count
	first := start + step/2
	for n := 0; n < count; n++ {
		u.targets[first+step*n] = false
	}
	return u
}

func (u *Uniform) Feed(frame image.Image, second int) {
	claimed, ok := u.targets[second]
	if !ok || claimed {
		return
	}
	u.targets[second] = true
	u.frames = append(u.frames, Clone(frame))
}

func (u *Uniform) Result() []image.Image { return u.frames }

// sampler admits frames inside [start, end] that are at least gap seconds
// after the previously admitted one.
type sampler struct {
	start, end, gap int
	last            int
	any             bool
}

func (s *sampler) admit(second int) bool {
	if second < s.start || second > s.end {
		return false
	}
	if s.any && second-s.last < s.gap {
		return false
	}
	s.any = true
	s.last = second
	return true
}

const (
	similarityGap   = 5
	shapeDensityGap = 10
)

type histFrame struct {
	frame image.Image
	hist  vision.Histogram
}

// Similarity samples candidates at least 5 seconds apart and prefers those
// whose grayscale histogram is closest (Bhattacharyya) to the next candidate,
// i.e. frames that stay on screen. The last candidate has no successor and
// is never chosen.
type Similarity struct {
	count int
	s     sampler
	cands []histFrame
}

func NewSimilarity(count, start, end int) *Similarity {
	return &Similarity{count: count, s: sampler{start: start, end: end, gap: similarityGap}}
}

func (sm *Similarity) Feed(frame image.Image, second int) {
	if !sm.s.admit(second) {
		return
	}
	c := Clone(frame)
	sm.cands = append(sm.cands, histFrame{frame: c, hist: vision.GrayHistogram(c)})
}

func (sm *Similarity) Result() []image.Image {
	if sm.count <= 0 || len(sm.cands) < 2 {
		return nil
	}
	type scored struct {
		frame image.Image
		dist  float64
	}
	sc := make([]scored, 0, len(sm.cands)-1)
	for i := 0; i+1 < len(sm.cands); i++ {
		sc = append(sc, scored{
			frame: sm.cands[i].frame,
			dist:  vision.Bhattacharyya(sm.cands[i].hist, sm.cands[i+1].hist),
		})
	}
	sort.SliceStable(sc, func(i, j int) bool { return sc[i].dist < sc[j].dist })
	out := make([]image.Image, 0, min(sm.count, len(sc)))
	for _, s := range sc[:min(sm.count, len(sc))] {
		out = append(out, s.frame)
	}
	return out
}

// ShapeDensity samples candidates at least 10 seconds apart and prefers the
// ones with the most detected circles and external contours.
type ShapeDensity struct {
	count int
	s     sampler
	cands []scoredFrame
	score func(image.Image) int
}

type scoredFrame struct {
	frame image.Image
	score int
}

func NewShapeDensity(count, start, end int) *ShapeDensity {
	return &ShapeDensity{
		count: count,
		s:     sampler{start: start, end: end, gap: shapeDensityGap},
		score: vision.ShapeDensity,
	}
}

func (sd *ShapeDensity) Feed(frame image.Image, second int) {
	if !sd.s.admit(second) {
		return
	}
	sd.cands = append(sd.cands, scoredFrame{frame: Clone(frame), score: sd.score(frame)})
}

func (sd *ShapeDensity) Result() []image.Image {
	if sd.count <= 0 {
		return nil
	}
	c := append([]scoredFrame(nil), sd.cands...)
	sort.SliceStable(c, func(i, j int) bool { return c[i].score > c[j].score })
	n := min(sd.count, len(c))
	out := make([]image.Image, 0, n)
	for _, f := range c[:n] {
		out = append(out, f.frame)
	}
	return out
}
