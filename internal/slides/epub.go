package slides

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EPUBFormat reads stories from EPUB files. Each spine document becomes a
// slide and each paragraph or heading in it one typed line.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Load(filename string) ([]Slide, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	var story []Slide

	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		lines, background := extractSlideFromHTML(string(data))
		if len(lines) == 0 {
			continue
		}
		story = append(story, Slide{Background: background, Lines: lines})
	}

	return story, nil
}

// blockAtoms are the elements whose text becomes one line.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Li: true, atom.Blockquote: true,
}

// extractSlideFromHTML returns the text of block elements as lines and the
// first site-absolute image source as background. Images inside the archive
// are ignored; the slide then falls back to the conventional background.
func extractSlideFromHTML(s string) ([]string, string) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, ""
	}

	var lines []string
	var background string

	var text func(*html.Node, *strings.Builder)
	text = func(n *html.Node, sb *strings.Builder) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			text(c, sb)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Img && background == "" {
				for _, a := range n.Attr {
					if a.Key == "src" && (strings.HasPrefix(a.Val, "/") || strings.HasPrefix(a.Val, "http")) {
						background = a.Val
					}
				}
			}
			if blockAtoms[n.DataAtom] {
				var sb strings.Builder
				text(n, &sb)
				if line := strings.Join(strings.Fields(sb.String()), " "); line != "" {
					lines = append(lines, line)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lines, background
}
