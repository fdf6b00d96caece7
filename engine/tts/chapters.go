package tts

import (
	"math"
	"strings"

	"github.com/plexify/plexify/pkg/mdtext"
)

const (
	introTitle    = "Introduction"
	documentTitle = "Briefing"
)

// Chapter is a narrated section: a level 1 or 2 heading and the plain text
// that follows it.
type Chapter struct {
	Title string
	Text  string
}

// SplitChapters breaks markdown content on top-level headings. Text before
// the first heading becomes an introduction; content without headings is a
// single chapter. Chapters without text are dropped.
func SplitChapters(content string) []Chapter {
	var chapters []Chapter
	var current *Chapter
	var body []string
	flush := func() {
		if current != nil && len(body) > 0 {
			current.Text = strings.Join(body, "\n\n")
			chapters = append(chapters, *current)
		}
		body = nil
	}
	sawHeading := false
	for _, b := range mdtext.Parse(content) {
		if b.Kind == mdtext.KindHeading && b.Level <= 2 {
			flush()
			sawHeading = true
			current = &Chapter{Title: b.Text}
			continue
		}
		if current == nil {
			current = &Chapter{Title: introTitle}
		}
		body = append(body, b.Text)
	}
	flush()
	if !sawHeading && len(chapters) == 1 {
		chapters[0].Title = documentTitle
	}
	return chapters
}

// EstimateDuration returns the spoken length of text in seconds at wpm
// words per minute, rounded to a tenth of a second.
func EstimateDuration(text string, wpm int) float64 {
	if wpm <= 0 {
		wpm = 150
	}
	words := len(strings.Fields(text))
	seconds := float64(words) / float64(wpm) * 60
	return math.Round(seconds*10) / 10
}
