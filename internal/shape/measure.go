package shape

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Measurer reports text metrics at a given font size.
type Measurer interface {
	Advance(text string, fontSize float64) float64
	LineHeight(fontSize float64) float64
}

// FaceMeasurer scales the metrics of a fixed-size font.Face to any font size.
type FaceMeasurer struct {
	Face font.Face
	Size float64 // pixel size the face was rasterised at
}

// NewBasicMeasurer measures with the 7x13 bitmap face from x/image.
func NewBasicMeasurer() *FaceMeasurer {
	return &FaceMeasurer{Face: basicfont.Face7x13, Size: 13}
}

func (m *FaceMeasurer) Advance(text string, fontSize float64) float64 {
	adv := font.MeasureString(m.Face, text)
	return float64(adv) / 64 * fontSize / m.Size
}

func (m *FaceMeasurer) LineHeight(fontSize float64) float64 {
	return float64(m.Face.Metrics().Height) / 64 * fontSize / m.Size
}

// Layout is the result of breaking text into lines.
type Layout struct {
	Lines  []string
	Width  float64
	Height float64
}

// LayoutIntrinsic lays text out on its hard line breaks only. The width is
// the widest line.
func LayoutIntrinsic(m Measurer, text string, fontSize float64) Layout {
	lines := strings.Split(text, "\n")
	var width float64
	for _, line := range lines {
		width = max(width, m.Advance(line, fontSize))
	}
	return Layout{
		Lines:  lines,
		Width:  width,
		Height: float64(len(lines)) * m.LineHeight(fontSize),
	}
}

// LayoutWrapped greedily wraps words so each line fits in width. A word wider
// than width gets a line of its own and overflows.
func LayoutWrapped(m Measurer, text string, fontSize, width float64) Layout {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if m.Advance(candidate, fontSize) <= width {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = w
		}
		lines = append(lines, current)
	}

	return Layout{
		Lines:  lines,
		Width:  width,
		Height: float64(len(lines)) * m.LineHeight(fontSize),
	}
}
