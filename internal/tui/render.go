package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background, giving two pixels per cell.
const upperHalf = "▀"

type colorPair struct {
	top, bottom string
}

// Render draws img with half-block characters. Every scale-th pixel is
// sampled in both directions.
func Render(img image.Image, scale int) string {
	if scale < 1 {
		scale = 1
	}

	b := img.Bounds()
	styles := make(map[colorPair]lipgloss.Style)
	var sb strings.Builder

	for y := b.Min.Y; y < b.Max.Y; y += 2 * scale {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x += scale {
			pair := colorPair{top: hexColor(img.At(x, y)), bottom: "#000000"}
			if y+scale < b.Max.Y {
				pair.bottom = hexColor(img.At(x, y+scale))
			}

			style, ok := styles[pair]
			if !ok {
				style = lipgloss.NewStyle().
					Foreground(lipgloss.Color(pair.top)).
					Background(lipgloss.Color(pair.bottom))
				styles[pair] = style
			}
			sb.WriteString(style.Render(upperHalf))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
