package cloud

import (
	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/model"
)

// Placeholder is shown instead of a cloud when there are no comments.
const Placeholder = "No comments yet. Be the first to comment!"

// Scene is one fully laid out rendering. A Scene with Empty set carries no
// words and is drawn as the placeholder message.
type Scene struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Empty  bool   `json:"empty"`
	Words  []Word `json:"words"`
}

// Renderer maps comments to tokens and hands them to a Placer.
type Renderer struct {
	placer Placer
	log    *zap.Logger
}

// NewRenderer returns a Renderer using p for layout. A nil logger discards
// output.
func NewRenderer(p Placer, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{placer: p, log: log}
}

// Scene lays out comments on a width x height canvas. An empty comment list
// produces a placeholder scene without invoking the placer.
func (r *Renderer) Scene(comments []model.Comment, width, height int) Scene {
	if len(comments) == 0 {
		r.log.Debug("no comments to render")
		return Scene{Width: width, Height: height, Empty: true}
	}

	tokens := Tokens(comments)
	words := r.placer.Place(tokens, width, height)
	r.log.Debug("rendered word cloud",
		zap.Int("tokens", len(tokens)),
		zap.Int("placed", len(words)),
		zap.Int("width", width),
		zap.Int("height", height))

	return Scene{Width: width, Height: height, Words: words}
}

// Word returns the word at index i and whether it exists.
func (s Scene) Word(i int) (Word, bool) {
	if i < 0 || i >= len(s.Words) {
		return Word{}, false
	}
	return s.Words[i], true
}

// WordByID returns the first placed word for comment id.
func (s Scene) WordByID(id int64) (Word, bool) {
	for _, w := range s.Words {
		if w.ID == id {
			return w, true
		}
	}
	return Word{}, false
}
