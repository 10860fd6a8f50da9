// Package display renders text lines onto the clock's monochrome screen.
package display

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Screen geometry of the SSD1306 module.
const (
	Width  = 128
	Height = 64
)

var face = basicfont.Face7x13

// Line is one DrawText call. Row and Col are the pixel position of the text's
// top-left corner; Size multiplies the glyph size.
type Line struct {
	Text string
	Size int
	Row  int
	Col  int
}

// Compose clears dst and draws lines onto it in order.
func Compose(dst draw.Image, lines []Line) {
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	for _, l := range lines {
		drawLine(dst, l)
	}
}

func drawLine(dst draw.Image, l Line) {
	if l.Text == "" {
		return
	}
	size := l.Size
	if size < 1 {
		size = 1
	}

	w := font.MeasureString(face, l.Text).Ceil()
	h := face.Metrics().Height.Ceil()
	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(l.Text)

	dr := image.Rect(l.Col, l.Row, l.Col+w*size, l.Row+h*size)
	xdraw.NearestNeighbor.Scale(dst, dr, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}
