package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// backdropDim darkens images so overlaid text stays readable.
const backdropDim = -40

// backdrop renders images as half-block cells and remembers the last result.
type backdrop struct {
	ref    string
	width  int
	height int
	out    string
}

// render returns img drawn into width x height cells. Each cell shows two
// vertically stacked pixels: the upper one as foreground, the lower one as
// background of "▀".
func (b *backdrop) render(ref string, img image.Image, width, height int) string {
	if img == nil || width <= 0 || height <= 0 {
		return ""
	}
	if b.ref == ref && b.width == width && b.height == height {
		return b.out
	}

	fitted := imaging.Fill(img, width, height*2, imaging.Center, imaging.Box)
	fitted = imaging.AdjustBrightness(fitted, backdropDim)

	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			top := fitted.NRGBAAt(x, 2*y)
			bottom := fitted.NRGBAAt(x, 2*y+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top.R, top.G, top.B))).
				Background(lipgloss.Color(hex(bottom.R, bottom.G, bottom.B))).
				Render("▀"))
		}
		if y < height-1 {
			sb.WriteByte('\n')
		}
	}

	b.ref, b.width, b.height, b.out = ref, width, height, sb.String()
	return b.out
}

func hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
