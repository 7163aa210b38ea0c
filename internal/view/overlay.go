package view

import "fmt"

// Like overlay dimensions, in pixels.
const (
	OverlayWidth  = 50
	OverlayHeight = 20
)

// Point is a screen offset.
type Point struct {
	X, Y float64
}

// Overlay is the clickable like affordance shown over a hovered word.
type Overlay struct {
	CommentID int64
	Likes     int
	Label     string
	X, Y      float64
	Width     float64
	Height    float64
}

// Hover shows the like overlay for the word at index i of the current scene,
// positioned at the word's layout coordinates plus the container offset. Any
// existing overlay is replaced. It reports false when i is not a word.
func (p *Page) Hover(i int, offset Point) (Overlay, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.scene.Word(i)
	if !ok {
		return Overlay{}, false
	}
	o := Overlay{
		CommentID: w.ID,
		Likes:     w.Likes,
		Label:     fmt.Sprintf("Like (%d)", w.Likes),
		X:         w.X + offset.X,
		Y:         w.Y + offset.Y,
		Width:     OverlayWidth,
		Height:    OverlayHeight,
	}
	p.overlay = &o
	return o, true
}

// Leave removes the overlay.
func (p *Page) Leave() {
	p.mu.Lock()
	p.overlay = nil
	p.mu.Unlock()
}

// Overlay returns the overlay currently shown, if any.
func (p *Page) Overlay() (Overlay, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.overlay == nil {
		return Overlay{}, false
	}
	return *p.overlay, true
}
