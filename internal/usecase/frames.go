package usecase

import (
	"context"
	"image"

	"github.com/forPelevin/vidarticle/internal/domain/frames"
	"github.com/forPelevin/vidarticle/internal/ports"
	"github.com/forPelevin/vidarticle/internal/types"
)

func (u Usecase) gatherFrames(ctx context.Context, src string, ws []types.Window, count int, kind types.SelectorType) (out [][]image.Image, err error) {
	if count <= 0 || len(ws) == 0 {
		return make([][]image.Image, len(ws)), nil
	}

	video, err := u.d.Media.Resolve(ctx, src, ports.MediaVideo)
	if err != nil {
		return nil, err
	}
	stream, err := u.d.Video.OpenFrames(ctx, video)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out, err = frames.Extract(ctx, stream, ws, count, kind)
	if err != nil {
		return nil, err
	}
	for i, fs := range out {
		if len(fs) < count {
			u.log().Warn("selector returned fewer frames than requested", "topic", i, "start", ws[i].Start, "end", ws[i].End, "requested", count, "got", len(fs), "selector", kind)
		}
	}
	return out, nil
}
