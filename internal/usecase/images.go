package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/vidarticle/internal/ports"
	"github.com/forPelevin/vidarticle/internal/types"
)

// Postprocessor turns one PNG-encoded frame into an image reference.
type Postprocessor interface {
	Process(ctx context.Context, pngData []byte) (string, error)
}

// Base64 inlines the PNG as standard base64 text.
type Base64 struct{}

func (Base64) Process(_ context.Context, b []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(b), nil
}

// Upload stores the frame on an image host and returns its URL.
type Upload struct {
	host ports.ImageHost
}

func (p Upload) Process(ctx context.Context, b []byte) (string, error) {
	return p.host.Upload(ctx, base64.StdEncoding.EncodeToString(b))
}

// NewPostprocessor fails with types.ErrConfiguration when the upload variant
// has no host configured.
func NewPostprocessor(f types.ImageFormat, host ports.ImageHost) (Postprocessor, error) {
	switch f {
	case "", types.ImageBase64:
		return Base64{}, nil
	case types.ImageImgur:
		if host == nil {
			return nil, fmt.Errorf("image format %q needs image host credentials: %w", f, types.ErrConfiguration)
		}
		return Upload{host: host}, nil
	default:
		return nil, fmt.Errorf("unknown image format %q: %w", f, types.ErrConfiguration)
	}
}

// processImages runs every frame of every topic through p concurrently.
// The result is index aligned with frames.
func (u Usecase) processImages(ctx context.Context, p Postprocessor, frames [][]image.Image) ([][]string, error) {
	out := make([][]string, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.limit())
	for i, fs := range frames {
		out[i] = make([]string, len(fs))
		for j, f := range fs {
			g.Go(func() error {
				var buf bytes.Buffer
				if err := png.Encode(&buf, f); err != nil {
					return fmt.Errorf("encode frame %d of topic %d: %w", j, i, err)
				}
				ref, err := p.Process(gctx, buf.Bytes())
				if err != nil {
					return fmt.Errorf("process frame %d of topic %d: %w", j, i, err)
				}
				out[i][j] = ref
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
