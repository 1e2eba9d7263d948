package frames

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/forPelevin/vidarticle/internal/types"
)

// fakeStream reuses one buffer for every frame, like the ffmpeg stream, and
// encodes the frame's second into the pixel so tests can identify it.
type fakeStream struct {
	fps    float64
	frames int
	i      int
	buf    *image.RGBA
	gray   func(second int) uint8
}

func newFakeStream(fps float64, frames int) *fakeStream {
	return &fakeStream{fps: fps, frames: frames, buf: image.NewRGBA(image.Rect(0, 0, 2, 2))}
}

func (f *fakeStream) FrameRate() float64 { return f.fps }

func (f *fakeStream) Next() (image.Image, error) {
	if f.i >= f.frames {
		return nil, io.EOF
	}
	sec := int(float64(f.i) / f.fps)
	c := color.RGBA{R: uint8(sec % 256), G: uint8(sec / 256), A: 255}
	if f.gray != nil {
		v := f.gray(sec)
		c = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			f.buf.SetRGBA(x, y, c)
		}
	}
	f.i++
	return f.buf, nil
}

func secondOf(img image.Image) int {
	r, g, _, _ := img.At(0, 0).RGBA()
	return int(r>>8) + int(g>>8)*256
}

func grayOf(img image.Image) uint8 {
	r, _, _, _ := img.At(0, 0).RGBA()
	return uint8(r >> 8)
}

func frameAt(second int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: uint8(second % 256), G: uint8(second / 256), A: 255})
	return img
}

func TestUniform_OneFramePerSecond(t *testing.T) {
	tests := []struct {
		count, start, end int
	}{
		{3, 0, 30},
		{3, 100, 160},
		{5, 10, 15},
		{1, 0, 1},
		{4, 7, 100},
	}
	for _, tt := range tests {
		u := NewUniform(tt.count, tt.start, tt.end)
		for s := tt.start; s <= tt.end; s++ {
			u.Feed(frameAt(s), s)
			u.Feed(frameAt(s), s) // duplicate second must not capture twice
		}
		got := u.Result()
		if len(got) != tt.count {
			t.Fatalf("count=%d [%d,%d]: expected %d frames, got %d", tt.count, tt.start, tt.end, tt.count, len(got))
		}
		seen := map[int]bool{}
		for _, f := range got {
			s := secondOf(f)
			if seen[s] || s < tt.start || s > tt.end {
				t.Fatalf("unexpected capture second %d in %v", s, seen)
			}
			seen[s] = true
		}
	}
}

func TestUniform_Targets(t *testing.T) {
	u := NewUniform(3, 0, 30)
	for _, s := range []int{5, 15, 25} {
		if _, ok := u.targets[s]; !ok {
			t.Fatalf("expected target at %d, got %v", s, u.targets)
		}
	}
	if len(NewUniform(0, 0, 30).targets) != 0 {
		t.Fatalf("expected no targets for zero count")
	}
}

func TestSimilarity_PrefersFramesLikeTheirSuccessor(t *testing.T) {
	values := map[int]uint8{0: 10, 5: 10, 10: 200, 15: 60, 20: 60, 25: 130, 30: 250, 35: 30, 40: 140}
	sm := NewSimilarity(2, 0, 40)
	for s := 0; s <= 40; s++ {
		v := values[s-s%5]
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
		sm.Feed(img, s)
	}
	if len(sm.cands) != 9 {
		t.Fatalf("expected candidates every 5 seconds, got %d", len(sm.cands))
	}
	got := sm.Result()
	if len(got) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got))
	}
	if grayOf(got[0]) != 10 || grayOf(got[1]) != 60 {
		t.Fatalf("unexpected selection: %d, %d", grayOf(got[0]), grayOf(got[1]))
	}
}

func TestSimilarity_SingleCandidateHasNoResult(t *testing.T) {
	sm := NewSimilarity(3, 0, 4)
	for s := 0; s <= 4; s++ {
		sm.Feed(frameAt(s), s)
	}
	if got := sm.Result(); len(got) != 0 {
		t.Fatalf("expected no frames without a successor, got %d", len(got))
	}
}

func TestShapeDensity_TopScores(t *testing.T) {
	sd := NewShapeDensity(2, 0, 50)
	sd.score = func(img image.Image) int { return map[int]int{0: 1, 10: 7, 20: 3, 30: 9, 40: 0, 50: 2}[secondOf(img)] }
	for s := 0; s <= 60; s++ {
		sd.Feed(frameAt(s), s)
	}
	if len(sd.cands) != 6 {
		t.Fatalf("expected candidates every 10 seconds within the window, got %d", len(sd.cands))
	}
	got := sd.Result()
	if len(got) != 2 || secondOf(got[0]) != 30 || secondOf(got[1]) != 10 {
		t.Fatalf("unexpected selection: %v", got)
	}
}

func TestNewSelector_Unknown(t *testing.T) {
	if _, err := NewSelector("bogus", 1, 0, 10); err == nil {
		t.Fatalf("expected error for unknown selector")
	}
}

func TestExtract_UniformPerWindow(t *testing.T) {
	s := newFakeStream(2, 200)
	ws := []types.Window{{0, 30}, {30, 60}, {60, 99}}
	got, err := Extract(context.Background(), s, ws, 3, types.SelectorUniform)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(got))
	}
	for i, frames := range got {
		if len(frames) != 3 {
			t.Fatalf("window %d: expected 3 frames, got %d", i, len(frames))
		}
		for _, f := range frames {
			sec := secondOf(f)
			if sec < ws[i].Start || sec > ws[i].End {
				t.Fatalf("window %d: frame at %d outside window", i, sec)
			}
		}
	}
}

func TestExtract_CarriesFirstFramePastWindowEnd(t *testing.T) {
	s := newFakeStream(1, 30)
	ws := []types.Window{{0, 10}, {11, 13}}
	got, err := Extract(context.Background(), s, ws, 3, types.SelectorUniform)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got[1]) != 1 || secondOf(got[1][0]) != 11 {
		t.Fatalf("expected the frame at 11s to reach the second window, got %v", got[1])
	}
}

func TestExtract_StreamEndsEarly(t *testing.T) {
	s := newFakeStream(1, 20)
	ws := []types.Window{{0, 10}, {10, 40}, {40, 80}}
	got, err := Extract(context.Background(), s, ws, 2, types.SelectorUniform)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected a result per window, got %d", len(got))
	}
	if len(got[2]) != 0 {
		t.Fatalf("expected no frames past the end of the stream, got %d", len(got[2]))
	}
	if s.i != 20 {
		t.Fatalf("expected the stream to be read exactly once, read %d frames", s.i)
	}
}

func TestExtract_Errors(t *testing.T) {
	if _, err := Extract(context.Background(), newFakeStream(0, 10), []types.Window{{0, 1}}, 1, types.SelectorUniform); err == nil {
		t.Fatalf("expected error for zero frame rate")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, newFakeStream(1, 10), []types.Window{{0, 5}}, 1, types.SelectorUniform)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
