package cloud

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Extent is the measured size of a run of text at a given font size.
// Ascent and Descent are measured from the baseline.
type Extent struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// Measurer reports text extents for layout.
type Measurer interface {
	Measure(text string, size float64) Extent
}

// Font measures and draws text with a TrueType font.
type Font struct {
	ttf *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face // measuring only; truetype faces are not goroutine-safe
}

// ParseFont parses TrueType data.
func ParseFont(ttf []byte) (*Font, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &Font{ttf: f, faces: make(map[float64]font.Face)}, nil
}

var (
	defaultFontOnce sync.Once
	defaultFont     *Font
)

// DefaultFont returns the bundled Go Regular font.
func DefaultFont() *Font {
	defaultFontOnce.Do(func() {
		f, err := ParseFont(goregular.TTF)
		if err != nil {
			panic(err)
		}
		defaultFont = f
	})
	return defaultFont
}

// NewFace returns a fresh face at size points (72 DPI, so points = pixels).
// The caller owns it and must not share it across goroutines.
func (f *Font) NewFace(size float64) font.Face {
	return truetype.NewFace(f.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Measure returns the advance width and vertical metrics of text.
func (f *Font) Measure(text string, size float64) Extent {
	f.mu.Lock()
	defer f.mu.Unlock()

	face, ok := f.faces[size]
	if !ok {
		face = f.NewFace(size)
		f.faces[size] = face
	}
	m := face.Metrics()
	return Extent{
		Width:   fixedToFloat(font.MeasureString(face, text)),
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
