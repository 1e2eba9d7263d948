package usecase

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/vidarticle/internal/domain/topics"
	"github.com/forPelevin/vidarticle/internal/types"
)

// writeContent returns one topic per window, index aligned. Windows whose
// transcript slice is empty get no request and keep empty paragraphs.
func (u Usecase) writeContent(ctx context.Context, entries []types.TranscriptEntry, ws []types.Window, person types.Person) ([]types.ArticleTopic, error) {
	slices := topics.SelectEntries(entries, ws)
	out := make([]types.ArticleTopic, len(ws))
	for i, w := range ws {
		out[i] = types.ArticleTopic{Start: w.Start, End: w.End, Images: []string{}}
	}

	system := topicPrompt(person)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.limit())
	for i, slice := range slices {
		if len(slice) == 0 {
			continue
		}
		g.Go(func() error {
			resp, err := u.d.LLM.Complete(gctx, system, topics.FormatTranscript(slice))
			if err != nil {
				return fmt.Errorf("topic %d content: %w", i, err)
			}
			out[i].Title, out[i].Paragraphs = topics.ParseTopicResponse(resp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// dropEmpty removes topics without paragraphs together with their frames.
func (u Usecase) dropEmpty(ts []types.ArticleTopic, frames [][]image.Image) ([]types.ArticleTopic, [][]image.Image) {
	keptT := ts[:0:0]
	var keptF [][]image.Image
	for i, t := range ts {
		if t.Paragraphs == "" {
			continue
		}
		keptT = append(keptT, t)
		if i < len(frames) {
			keptF = append(keptF, frames[i])
		} else {
			keptF = append(keptF, nil)
		}
	}
	if len(keptT) != len(ts) {
		u.log().Warn("topics without paragraphs were removed, article quality may suffer", "removed", len(ts)-len(keptT), "kept", len(keptT))
	}
	return keptT, keptF
}
