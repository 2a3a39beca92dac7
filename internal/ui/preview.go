package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// renderPreview draws img into a box of width x height cells. Each cell is an
// upper half block whose foreground is the top pixel and background the
// bottom one, so the box holds height*2 pixel rows. Aspect ratio is kept and
// the picture is centred horizontally.
func renderPreview(img image.Image, width, height int) []string {
	if img == nil || width <= 0 || height <= 0 {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil
	}

	outW, outH := fitBox(bounds.Dx(), bounds.Dy(), width, height*2)
	pad := strings.Repeat(" ", (width-outW)/2)

	lines := make([]string, 0, (outH+1)/2)
	for y := 0; y < outH; y += 2 {
		var line strings.Builder
		line.WriteString(pad)

		// Runs of identical cells share one styled segment.
		var runTop, runBottom string
		run := 0
		flush := func() {
			if run == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(runTop))
			if runBottom != "" {
				style = style.Background(lipgloss.Color(runBottom))
			}
			line.WriteString(style.Render(strings.Repeat(halfBlock, run)))
			run = 0
		}

		for x := 0; x < outW; x++ {
			top := hexColor(sample(img, bounds, x, y, outW, outH))
			bottom := ""
			if y+1 < outH {
				bottom = hexColor(sample(img, bounds, x, y+1, outW, outH))
			}
			if run > 0 && (top != runTop || bottom != runBottom) {
				flush()
			}
			runTop, runBottom = top, bottom
			run++
		}
		flush()
		lines = append(lines, line.String())
	}
	return lines
}

// fitBox scales srcW x srcH to fit inside maxW x maxH, keeping aspect ratio.
func fitBox(srcW, srcH, maxW, maxH int) (int, int) {
	scale := min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := max(1, int(float64(srcW)*scale))
	h := max(1, int(float64(srcH)*scale))
	return min(w, maxW), min(h, maxH)
}

// sample picks the nearest source pixel for output pixel (x, y).
func sample(img image.Image, b image.Rectangle, x, y, outW, outH int) color.Color {
	sx := b.Min.X + x*b.Dx()/outW
	sy := b.Min.Y + y*b.Dy()/outH
	return img.At(sx, sy)
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
