package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/vidarticle/internal/domain/jsonrepair"
	"github.com/forPelevin/vidarticle/internal/domain/timecode"
	"github.com/forPelevin/vidarticle/internal/domain/topics"
	"github.com/forPelevin/vidarticle/internal/types"
)

type proposal struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Topics      []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"topics"`
}

type outline struct {
	Title       string
	Description string
	Windows     []types.Window
}

// segment asks the model for a title, a description and topic boundaries,
// then merges the boundaries down to the requested count.
func (u Usecase) segment(ctx context.Context, entries []types.TranscriptEntry, requested int) (outline, error) {
	resp, err := u.d.LLM.Complete(ctx, boundaryPrompt, topics.FormatTranscript(entries))
	if err != nil {
		return outline{}, fmt.Errorf("propose topics: %w", err)
	}

	var p proposal
	if err := jsonrepair.Unmarshal(resp, &p); err != nil {
		return outline{}, err
	}

	ws := make([]types.Window, 0, len(p.Topics))
	for i, t := range p.Topics {
		start, err := timecode.Parse(t.Start)
		if err != nil {
			return outline{}, fmt.Errorf("topic %d start: %w", i, err)
		}
		end, err := timecode.Parse(t.End)
		if err != nil {
			return outline{}, fmt.Errorf("topic %d end: %w", i, err)
		}
		ws = append(ws, types.Window{Start: start, End: end})
	}

	first, last := entries[0], entries[len(entries)-1]
	ws = topics.Normalize(ws, int(math.Ceil(last.Start)))
	if len(ws) == 0 {
		return outline{}, fmt.Errorf("model proposed no usable topics: %w", types.ErrMalformedResponse)
	}
	proposed := len(ws)
	ws = topics.Recombine(ws, requested, last.Start-first.Start)
	if len(ws) != requested {
		u.log().Warn("topic count differs from requested", "requested", requested, "proposed", proposed, "got", len(ws))
	}

	return outline{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Windows:     ws,
	}, nil
}
