package slides

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLFormat reads stories as a list of slides:
//
//	slides:
//	  - id: 1
//	    background: /images/slide_1.png
//	    text:
//	      - Earth had reached the peak of its potential
type YAMLFormat struct{}

func init() {
	Register(&YAMLFormat{})
}

func (f *YAMLFormat) Name() string         { return "YAML" }
func (f *YAMLFormat) Extensions() []string { return []string{".yaml", ".yml"} }

type yamlStory struct {
	Slides []Slide `yaml:"slides"`
}

func (f *YAMLFormat) Load(filename string) ([]Slide, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var doc yamlStory
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse story yaml: %w", err)
	}
	return doc.Slides, nil
}
