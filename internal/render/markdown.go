package render

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pixil98/go-mud-client/internal/display"
)

// wikiWord matches CamelCase encyclopedia topics so help text can offer them
// as follow-up links.
var wikiWord = regexp.MustCompile(`([A-Z]+[a-z]+([A-Z]+[a-z]+)+)`)

// Markdown renders a markdown-ish body for the terminal. WikiWords become
// links so front-ends can turn them into "help <topic>" follow-ups.
func Markdown(source string) string {
	linked := wikiWord.ReplaceAllString(source, "[$1](#)")

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(display.DefaultWidth),
	)
	if err != nil {
		return display.Wrap(source)
	}

	out, err := renderer.Render(linked)
	if err != nil {
		return display.Wrap(source)
	}
	return strings.TrimRight(out, "\n")
}
