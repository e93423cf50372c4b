package slides

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultStory(t *testing.T) {
	story := Default()
	if len(story) != 21 {
		t.Fatalf("Expected 21 slides, got %d", len(story))
	}
	for i, s := range story {
		if s.ID != i+1 {
			t.Errorf("Slide %d: expected id %d, got %d", i, i+1, s.ID)
		}
		if s.Background != DefaultBackground(i+1) {
			t.Errorf("Slide %d: unexpected background %q", s.ID, s.Background)
		}
		if len(s.Lines) == 0 {
			t.Errorf("Slide %d has no lines", s.ID)
		}
	}

	// Default hands out copies.
	story[0].Lines[0] = "changed"
	if Default()[0].Lines[0] == "changed" {
		t.Error("Default() must not expose the built-in table")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   []Slide
		wantErr bool
	}{
		{"empty", nil, true},
		{"missing lines", []Slide{{ID: 1}}, true},
		{"duplicate ids", []Slide{{ID: 1, Lines: []string{"a"}}, {ID: 1, Lines: []string{"b"}}}, true},
		{"fills defaults", []Slide{{Lines: []string{"a"}}, {Lines: []string{"b"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			for i, s := range got {
				if s.ID != i+1 {
					t.Errorf("slide %d: id = %d", i, s.ID)
				}
				if s.Background != DefaultBackground(i+1) {
					t.Errorf("slide %d: background = %q", i, s.Background)
				}
			}
		})
	}

	if _, err := Normalize(nil); !errors.Is(err, ErrEmptyStory) {
		t.Errorf("Normalize(nil) error = %v, want ErrEmptyStory", err)
	}
}

func TestMarkdownLoad(t *testing.T) {
	tmpDir := t.TempDir()
	mdFile := filepath.Join(tmpDir, "story.md")

	content := `# Earth Ascendant
![earth](/images/earth.png)
Earth had reached the peak.

A harmony of technology and spirit.

# Empty header

# The Vaults
Value became memory.
`
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	story, err := Load(mdFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(story) != 2 {
		t.Fatalf("Expected 2 slides, got %d", len(story))
	}
	if story[0].Background != "/images/earth.png" {
		t.Errorf("Expected custom background, got %q", story[0].Background)
	}
	if want := []string{"Earth had reached the peak.", "A harmony of technology and spirit."}; strings.Join(story[0].Lines, "|") != strings.Join(want, "|") {
		t.Errorf("Unexpected lines: %q", story[0].Lines)
	}
	if story[1].Background != "/images/slide_2.png" {
		t.Errorf("Expected default background, got %q", story[1].Background)
	}
}

func TestYAMLLoad(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "story.yaml")

	content := `slides:
  - id: 7
    background: /images/a.png
    text:
      - first line
      - second line
  - text:
      - only line
`
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	story, err := Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(story) != 2 {
		t.Fatalf("Expected 2 slides, got %d", len(story))
	}
	if story[0].ID != 7 || len(story[0].Lines) != 2 {
		t.Errorf("Unexpected first slide: %+v", story[0])
	}
	if story[1].ID != 2 || story[1].Background != "/images/slide_2.png" {
		t.Errorf("Unexpected second slide: %+v", story[1])
	}
}

func TestLoadUnsupported(t *testing.T) {
	if _, err := Load("story.txt"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestExtractSlideFromHTML(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Ignored</title></head>
		<body>
			<img src="/images/vault.png"/>
			<h1>The Vaults</h1>
			<p>Value was no <b>longer</b> gold.</p>
			<p>
				Value became
				memory.
			</p>
			<p>   </p>
		</body>
	</html>
	`

	lines, background := extractSlideFromHTML(htmlContent)
	want := []string{"The Vaults", "Value was no longer gold.", "Value became memory."}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
	if background != "/images/vault.png" {
		t.Errorf("Expected background from img, got %q", background)
	}
}

func TestBackgrounds(t *testing.T) {
	refs := Backgrounds(Default()[:2])
	if len(refs) != 2 || refs[1] != "/images/slide_2.png" {
		t.Errorf("Backgrounds() = %q", refs)
	}
}
