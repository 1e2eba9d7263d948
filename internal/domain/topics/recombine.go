package topics

import (
	"sort"

	"github.com/forPelevin/vidarticle/internal/types"
)

// Normalize repairs proposed windows whose end does not follow their start,
// which happens when the model output needed a zero "end" placeholder.
// Such a window ends where the next one starts; the last one ends at
// transcriptEnd. Windows still empty after that are dropped. The result is
// ordered by start.
func Normalize(ws []types.Window, transcriptEnd int) []types.Window {
	ws = append([]types.Window(nil), ws...)
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].Start < ws[j].Start })
	out := make([]types.Window, 0, len(ws))
	for i, w := range ws {
		if w.End <= w.Start {
			if i+1 < len(ws) {
				w.End = ws[i+1].Start
			} else {
				w.End = transcriptEnd
			}
		}
		if w.End <= w.Start {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Recombine merges adjacent proposed windows until roughly requested windows
// remain. totalSpan is the transcript length in seconds; when it is not
// positive the proposed windows' own span is used.
//
// A merged window is closed at a proposed end only when both the merged
// length and the remaining length past its start exceed the average target
// length, so the tail can still form a reasonable final window. A trailing
// zero-length window is never emitted.
func Recombine(ws []types.Window, requested int, totalSpan float64) []types.Window {
	if len(ws) <= requested || requested <= 1 || len(ws) <= 1 {
		return append([]types.Window(nil), ws...)
	}
	lastEnd := ws[len(ws)-1].End
	if totalSpan <= 0 {
		totalSpan = float64(lastEnd - ws[0].Start)
	}
	avg := totalSpan / float64(requested)

	var out []types.Window
	mergeStart := ws[0].Start
	for _, w := range ws {
		if float64(w.End-mergeStart) > avg && float64(lastEnd-mergeStart) > avg {
			out = append(out, types.Window{Start: mergeStart, End: w.End})
			mergeStart = w.End
		}
	}
	if mergeStart < lastEnd {
		out = append(out, types.Window{Start: mergeStart, End: lastEnd})
	}
	return out
}
