package store

import (
	"sort"
	"strings"

	"github.com/vector76/wordwall/internal/model"
)

// ListOptions narrows a comment listing.
type ListOptions struct {
	Query string // case-insensitive substring match on text; empty = all
	Limit int    // maximum number of comments; < 1 = no limit
}

// List returns comments matching opts, newest first.
func (s *FileStore) List(opts ListOptions) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return applyOptions(sortedNewestFirst(s.comments), opts), nil
}

// sortedNewestFirst orders comments by created_at descending, breaking ties
// by ID descending so insertion order is stable within one timestamp.
func sortedNewestFirst(m map[int64]model.Comment) []model.Comment {
	result := make([]model.Comment, 0, len(m))
	for _, c := range m {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[j].CreatedAt.Before(result[i].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// applyOptions filters an already ordered slice.
func applyOptions(comments []model.Comment, opts ListOptions) []model.Comment {
	if opts.Query != "" {
		q := strings.ToLower(opts.Query)
		filtered := comments[:0]
		for _, c := range comments {
			if strings.Contains(strings.ToLower(c.Text), q) {
				filtered = append(filtered, c)
			}
		}
		comments = filtered
	}
	if opts.Limit > 0 && len(comments) > opts.Limit {
		comments = comments[:opts.Limit]
	}
	return comments
}
