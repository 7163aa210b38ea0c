// Package cloud turns comments into a word cloud: each comment becomes a
// WordToken sized by its likes, a Layout places the tokens on a canvas, and
// the resulting Scene is drawn as an SVG fragment or a PNG.
package cloud

import "github.com/vector76/wordwall/internal/model"

// BaseSize is the font size of a comment with no likes; each like adds
// LikeStep pixels.
const (
	BaseSize = 10
	LikeStep = 2
)

// WordToken is the per-render view of a comment used for layout.
type WordToken struct {
	Text  string `json:"text"`
	Size  int    `json:"size"`
	ID    int64  `json:"id"`
	Likes int    `json:"likes"`
}

// TokenSize returns the font size for a like count. Negative counts are
// treated as zero.
func TokenSize(likes int) int {
	if likes < 0 {
		likes = 0
	}
	return BaseSize + likes*LikeStep
}

// Tokens maps every comment to exactly one WordToken, preserving order.
func Tokens(comments []model.Comment) []WordToken {
	tokens := make([]WordToken, len(comments))
	for i, c := range comments {
		likes := c.Likes
		if likes < 0 {
			likes = 0
		}
		tokens[i] = WordToken{
			Text:  c.Text,
			Size:  TokenSize(likes),
			ID:    c.ID,
			Likes: likes,
		}
	}
	return tokens
}
