package topics

import (
	"strings"

	"github.com/forPelevin/vidarticle/internal/domain/timecode"
	"github.com/forPelevin/vidarticle/internal/types"
)

// FailedTitle replaces the title of a topic whose model answer had no body lines.
const FailedTitle = "Failed to generate"

// FormatTranscript renders each entry as "h:mm:ss - text".
func FormatTranscript(entries []types.TranscriptEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(timecode.Format(e.Start))
		b.WriteString(" - ")
		b.WriteString(e.Text)
	}
	return b.String()
}

// SelectEntries returns, per window, the entries with start <= entry.Start <= end.
//
// Window ends proposed by the model tend to stop just short of the final
// caption, so when the last slice is non-empty and misses the final entry,
// that entry is appended to it. No other slice is touched.
func SelectEntries(entries []types.TranscriptEntry, ws []types.Window) [][]types.TranscriptEntry {
	out := make([][]types.TranscriptEntry, len(ws))
	lastIdx := -1
	for i, w := range ws {
		var slice []types.TranscriptEntry
		for j, e := range entries {
			if float64(w.Start) <= e.Start && e.Start <= float64(w.End) {
				slice = append(slice, e)
				if i == len(ws)-1 {
					lastIdx = j
				}
			}
		}
		out[i] = slice
	}
	if n := len(ws); n > 0 && len(entries) > 0 && len(out[n-1]) > 0 && lastIdx != len(entries)-1 {
		out[n-1] = append(out[n-1], entries[len(entries)-1])
	}
	return out
}

// ParseTopicResponse splits a per-topic model answer into its title (first
// line) and paragraphs (remaining lines). A single-line answer keeps its text
// as the paragraphs under FailedTitle. An empty answer yields empty strings.
func ParseTopicResponse(resp string) (title, paragraphs string) {
	resp = strings.TrimSpace(strings.ReplaceAll(resp, "\r\n", "\n"))
	if resp == "" {
		return "", ""
	}
	lines := strings.Split(resp, "\n")
	if len(lines) == 1 {
		return FailedTitle, lines[0]
	}
	return strings.TrimSpace(lines[0]), strings.Join(lines[1:], "\n")
}
