package slides

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat reads stories written as Markdown. Every header starts a
// slide, an image line sets its background and each other non-empty line
// becomes one typed line.
//
//	# Earth Ascendant
//	![](/images/slide_1.png)
//	Earth had reached the peak of its potential
//	a harmony of technology and spirit.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// headerRegex matches markdown headers (# to ######)
var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// imageRegex matches a markdown image on its own line.
var imageRegex = regexp.MustCompile(`^!\[[^\]]*\]\(([^)\s]+)\)$`)

func (f *MarkdownFormat) Load(filename string) ([]Slide, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var story []Slide
	var current *Slide

	flush := func() {
		if current != nil && len(current.Lines) > 0 {
			story = append(story, *current)
		}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if headerRegex.MatchString(line) {
			flush()
			current = &Slide{}
			continue
		}

		// Text before the first header opens an untitled slide.
		if current == nil {
			current = &Slide{}
		}

		if match := imageRegex.FindStringSubmatch(line); match != nil {
			current.Background = match[1]
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	flush()

	return story, scanner.Err()
}
