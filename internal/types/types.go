package types

// Transcript is what speech-to-text backends return.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// TranscriptEntry is one caption line. A transcript is a slice of entries sorted by Start.
type TranscriptEntry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionTrack is one caption stream offered by the native caption source.
type CaptionTrack struct {
	LanguageCode         string
	Name                 string
	IsGenerated          bool
	TranslationLanguages []string
	BaseURL              string
}

// CanTranslateTo reports whether the source can machine-translate the track into lang.
func (t CaptionTrack) CanTranslateTo(lang string) bool {
	for _, l := range t.TranslationLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Window is a [Start, End] second range delimiting one topic.
type Window struct {
	Start int
	End   int
}

type ArticleTopic struct {
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Title      string   `json:"title,omitempty"`
	Paragraphs string   `json:"paragraphs,omitempty"`
	Images     []string `json:"images"`
}

type Article struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Topics         []ArticleTopic `json:"topics"`
	GenerationTime GenerationTime `json:"generation_time"`
}

// GenerationTime holds per-stage wall time in seconds.
type GenerationTime struct {
	Total      float64 `json:"total"`
	Transcript float64 `json:"transcript"`
	Title      float64 `json:"title"`
	Content    float64 `json:"content"`
	Images     float64 `json:"images"`
}

type SelectorType string

const (
	SelectorUniform      SelectorType = "uniform"
	SelectorSimilarity   SelectorType = "similarity"
	SelectorShapeDensity SelectorType = "shape_density"
)

func (s SelectorType) Valid() bool {
	switch s {
	case SelectorUniform, SelectorSimilarity, SelectorShapeDensity:
		return true
	default:
		return false
	}
}

type ImageFormat string

const (
	ImageBase64 ImageFormat = "base64"
	ImageImgur  ImageFormat = "imgur"
)

func (f ImageFormat) Valid() bool {
	return f == ImageBase64 || f == ImageImgur
}

type Person string

const (
	PersonFirst Person = "first"
	PersonThird Person = "third"
)

func (p Person) Valid() bool {
	return p == PersonFirst || p == PersonThird
}
