package cloud

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var palette = []color.RGBA{
	{31, 119, 180, 255},
	{255, 127, 14, 255},
	{44, 160, 44, 255},
	{214, 39, 40, 255},
	{148, 103, 189, 255},
	{140, 86, 75, 255},
	{0, 0, 0, 255},
	{127, 127, 127, 255},
}

// WritePNG rasterizes s with f and encodes it as PNG.
func WritePNG(w io.Writer, s Scene, f *Font) error {
	return png.Encode(w, Rasterize(s, f))
}

// Rasterize draws s onto a white RGBA canvas.
func Rasterize(s Scene, f *Font) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	cx, cy := float64(s.Width)/2, float64(s.Height)/2

	if s.Empty {
		const size = 16
		ext := f.Measure(Placeholder, size)
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.RGBA{85, 85, 85, 255}),
			Face: f.NewFace(size),
			Dot:  point(cx-ext.Width/2, cy),
		}
		d.DrawString(Placeholder)
		return img
	}

	for i, word := range s.Words {
		col := palette[i%len(palette)]
		face := f.NewFace(word.FontSize)
		if word.Rotate == 90 {
			drawRotated(img, word, face, col, cx, cy)
			continue
		}
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  point(cx+word.X-word.Width/2, cy+word.Y),
		}
		d.DrawString(word.Text)
	}
	return img
}

// drawRotated renders the word upright on a scratch image and composites it
// onto dst turned 90 degrees clockwise around the word's anchor.
func drawRotated(dst *image.RGBA, word Word, face font.Face, col color.RGBA, cx, cy float64) {
	sw := int(math.Ceil(word.Width))
	sh := int(math.Ceil(word.Ascent + word.Descent))
	if sw <= 0 || sh <= 0 {
		return
	}
	scratch := image.NewRGBA(image.Rect(0, 0, sw, sh))
	d := &font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  point(0, word.Ascent),
	}
	d.DrawString(word.Text)

	bounds := dst.Bounds()
	for v := 0; v < sh; v++ {
		for u := 0; u < sw; u++ {
			src := scratch.RGBAAt(u, v)
			if src.A == 0 {
				continue
			}
			dx := float64(u) - word.Width/2
			dy := float64(v) - word.Ascent
			px := int(math.Round(cx + word.X - dy))
			py := int(math.Round(cy + word.Y + dx))
			if !(image.Point{px, py}).In(bounds) {
				continue
			}
			dst.SetRGBA(px, py, over(src, dst.RGBAAt(px, py)))
		}
	}
}

// over composites premultiplied src onto dst.
func over(src, dst color.RGBA) color.RGBA {
	inv := 255 - uint32(src.A)
	return color.RGBA{
		R: uint8(uint32(src.R) + uint32(dst.R)*inv/255),
		G: uint8(uint32(src.G) + uint32(dst.G)*inv/255),
		B: uint8(uint32(src.B) + uint32(dst.B)*inv/255),
		A: uint8(uint32(src.A) + uint32(dst.A)*inv/255),
	}
}

func point(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}
