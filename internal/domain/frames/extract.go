package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/forPelevin/vidarticle/internal/types"
)

// Stream yields decoded frames in presentation order. Next returns io.EOF
// after the last frame; the returned image is valid until the next call.
type Stream interface {
	FrameRate() float64
	Next() (image.Image, error)
}

// Extract runs one forward pass over s and returns, per window, the frames
// chosen by a fresh selector of the given kind. Windows are consumed in the
// given order and the stream never rewinds, so windows must be sorted.
//
// Frame i (zero-based) belongs to second floor(i / fps). The first frame past
// a window's end is handed to the next window instead of being dropped. Once
// the stream ends, the remaining windows get whatever their selectors hold.
func Extract(ctx context.Context, s Stream, ws []types.Window, count int, kind types.SelectorType) ([][]image.Image, error) {
	fps := s.FrameRate()
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %v", fps)
	}

	out := make([][]image.Image, len(ws))
	var (
		index         int
		eof           bool
		pending       image.Image
		pendingSecond int
	)
	for wi, w := range ws {
		sel, err := NewSelector(kind, count, w.Start, w.End)
		if err != nil {
			return nil, err
		}

		if pending != nil {
			if pendingSecond > w.End {
				out[wi] = sel.Result()
				continue
			}
			sel.Feed(pending, pendingSecond)
			pending = nil
		}

		for !eof {
			if index%256 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			frame, err := s.Next()
			if errors.Is(err, io.EOF) {
				eof = true
				break
			}
			if err != nil {
				return nil, fmt.Errorf("decode frame %d: %w", index, err)
			}
			second := int(float64(index) / fps)
			index++
			if second > w.End {
				pending, pendingSecond = frame, second
				break
			}
			sel.Feed(frame, second)
		}
		out[wi] = sel.Result()
	}
	return out, nil
}
