package cloud

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Layout defaults.
const (
	DefaultPadding    = 5
	DefaultFontFamily = "Arial"
)

// Word is a WordToken placed on the canvas. X and Y are relative to the
// canvas centre and mark the text anchor (horizontal middle, baseline).
type Word struct {
	WordToken
	Font     string  `json:"font"`
	FontSize float64 `json:"font_size"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotate   int     `json:"rotate"`
	Width    float64 `json:"width"`
	Ascent   float64 `json:"ascent"`
	Descent  float64 `json:"descent"`
}

// Rect is an axis-aligned box in centre-relative coordinates.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Inset grows r by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{r.X0 - d, r.Y0 - d, r.X1 + d, r.Y1 + d}
}

// Bounds returns the box the word occupies after rotation.
func (w Word) Bounds() Rect {
	return boundsAt(w.X, w.Y, w.Rotate, Extent{Width: w.Width, Ascent: w.Ascent, Descent: w.Descent})
}

func boundsAt(x, y float64, rotate int, e Extent) Rect {
	half := e.Width / 2
	if rotate == 90 {
		// rotate(90) maps (dx, dy) to (-dy, dx).
		return Rect{x - e.Descent, y - half, x + e.Ascent, y + half}
	}
	return Rect{x - half, y - e.Ascent, x + half, y + e.Descent}
}

// Placer positions tokens on a width x height canvas. Tokens that cannot be
// placed are omitted from the result.
type Placer interface {
	Place(tokens []WordToken, width, height int) []Word
}

// Layout is a spiral word-cloud placer. Words are placed largest first; each
// starts at a random point near the centre and walks an Archimedean spiral
// until its padded box fits inside the canvas without touching a placed word.
type Layout struct {
	Padding  float64
	Font     string
	FontSize func(WordToken) float64
	Rotate   func() int
	Random   func() float64
	Measurer Measurer
}

// NewLayout returns a Layout with the cloud defaults: padding 5, Arial,
// size taken from the token, and rotation chosen uniformly from {0, 90}.
func NewLayout(m Measurer) *Layout {
	l := &Layout{
		Padding:  DefaultPadding,
		Font:     DefaultFontFamily,
		FontSize: func(t WordToken) float64 { return float64(t.Size) },
		Random:   rand.Float64,
		Measurer: m,
	}
	l.Rotate = func() int { return int(l.Random()*2) * 90 }
	return l
}

// Place implements Placer.
func (l *Layout) Place(tokens []WordToken, width, height int) []Word {
	order := make([]WordToken, len(tokens))
	copy(order, tokens)
	sort.SliceStable(order, func(i, j int) bool {
		return l.FontSize(order[i]) > l.FontSize(order[j])
	})

	w, h := float64(width), float64(height)
	canvas := Rect{-w / 2, -h / 2, w / 2, h / 2}
	ratio := 1.0
	if h > 0 {
		ratio = w / h
	}
	// Past this angle every spiral point lies outside the canvas.
	maxTheta := 2 * math.Max(w, h)
	if ratio > 0 {
		maxTheta = 2 * math.Max(h, w/ratio)
	}

	var boxes []Rect
	placed := make([]Word, 0, len(order))
	for _, t := range order {
		size := l.FontSize(t)
		ext := l.Measurer.Measure(t.Text, size)
		rotate := l.Rotate()
		if !fits(boundsAt(0, 0, rotate, ext).Inset(l.Padding), w, h) {
			continue
		}
		x0 := math.Round((l.Random() - 0.5) * w / 2)
		y0 := math.Round((l.Random() - 0.5) * h / 2)
		step := 1.0
		if l.Random() < 0.5 {
			step = -1
		}

		for i := 0.0; ; i += step {
			theta := i * 0.1
			dx, dy := ratio*theta*math.Cos(theta), theta*math.Sin(theta)
			if math.Abs(theta) > maxTheta {
				break
			}
			x, y := math.Round(x0+dx), math.Round(y0+dy)
			box := boundsAt(x, y, rotate, ext).Inset(l.Padding)
			if box.X0 < canvas.X0 || box.Y0 < canvas.Y0 || box.X1 > canvas.X1 || box.Y1 > canvas.Y1 {
				continue
			}
			if collides(box, boxes) {
				continue
			}
			boxes = append(boxes, box)
			placed = append(placed, Word{
				WordToken: t,
				Font:      l.Font,
				FontSize:  size,
				X:         x,
				Y:         y,
				Rotate:    rotate,
				Width:     ext.Width,
				Ascent:    ext.Ascent,
				Descent:   ext.Descent,
			})
			break
		}
	}
	return placed
}

// fits reports whether box is no larger than a w x h canvas.
func fits(box Rect, w, h float64) bool {
	return box.X1-box.X0 <= w && box.Y1-box.Y0 <= h
}

func collides(box Rect, boxes []Rect) bool {
	for _, b := range boxes {
		if box.Intersects(b) {
			return true
		}
	}
	return false
}
