package slides

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format loads a story from a file of a particular kind.
type Format interface {
	Name() string
	Extensions() []string
	Load(filename string) ([]Slide, error)
}

var registry []Format

// Register adds a story format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Load reads a story file using the format registered for its extension.
// The result is normalized.
func Load(filename string) ([]Slide, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				story, err := f.Load(filename)
				if err != nil {
					return nil, err
				}
				return Normalize(story)
			}
		}
	}
	return nil, fmt.Errorf("unsupported story format %q (supported: %s)", ext, strings.Join(SupportedFormats(), ", "))
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
