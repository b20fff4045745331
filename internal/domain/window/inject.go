package window

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Script is one injected script element: external when Src is set, inline
// otherwise.
type Script struct {
	Src     string
	Content string
}

func (s Script) html() string {
	if s.Src != "" {
		return fmt.Sprintf(`<script src="%s"></script>`, html.EscapeString(s.Src))
	}
	// an inline body must not close its own element
	body := strings.ReplaceAll(s.Content, "</script", `<\/script`)
	return "<script>" + body + "</script>"
}

// Inject inserts scripts at the top of the document head, in order, so
// they run before any script of the page itself.
func Inject(markup []byte, scripts ...Script) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("window: parse page: %w", err)
	}

	var sb strings.Builder
	for _, s := range scripts {
		sb.WriteString(s.html())
	}

	// the parser always synthesizes a head
	doc.Find("head").First().PrependHtml(sb.String())

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("window: render page: %w", err)
	}
	return []byte(out), nil
}
