package output

import (
	"fmt"
	"strings"

	"github.com/forPelevin/vidarticle/internal/domain/timecode"
	"github.com/forPelevin/vidarticle/internal/types"
)

func RenderMarkdown(a types.Article) string {
	var b strings.Builder
	if a.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", a.Title)
	} else {
		b.WriteString("# Article\n\n")
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "> %s\n\n", a.Description)
	}
	b.WriteString("---\n\n")

	for _, t := range a.Topics {
		title := t.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		fmt.Fprintf(&b, "_%s - %s_\n\n", timecode.FormatPadded(float64(t.Start)), timecode.FormatPadded(float64(t.End)))
		for _, p := range splitParagraphs(t.Paragraphs) {
			b.WriteString(p)
			b.WriteString("\n\n")
		}
		for i, img := range t.Images {
			fmt.Fprintf(&b, "![%s %d](%s)\n\n", title, i+1, imageSrc(img))
		}
	}
	return b.String()
}

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
