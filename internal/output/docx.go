package output

import (
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/forPelevin/vidarticle/internal/domain/timecode"
	"github.com/forPelevin/vidarticle/internal/types"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// WriteDocx saves the article as a styled Word document. Only hosted images
// are referenced, as links; inline base64 frames are left out.
func WriteDocx(path string, a types.Article) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addRun(doc.AddParagraph(""), a.Title, true, 16)
	if a.Description != "" {
		addRun(doc.AddParagraph(""), a.Description, false, fontSize)
	}

	for _, t := range a.Topics {
		doc.AddParagraph("")
		addRun(doc.AddParagraph(""), t.Title, true, 15)
		addRun(doc.AddParagraph(""), timecode.FormatPadded(float64(t.Start))+" - "+timecode.FormatPadded(float64(t.End)), false, 11)
		for _, p := range splitParagraphs(t.Paragraphs) {
			addRun(doc.AddParagraph(""), p, false, fontSize)
		}
		for _, img := range t.Images {
			if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
				addRun(doc.AddParagraph(""), img, false, 11)
			}
		}
	}

	return doc.SaveTo(path)
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
