package server

import (
	"github.com/vector76/wordwall/internal/model"
	"github.com/vector76/wordwall/internal/store"
)

// CommentStore is the persistence the server needs. Both store.FileStore
// and store.SQLStore satisfy it.
type CommentStore interface {
	List(opts store.ListOptions) ([]model.Comment, error)
	Create(text string) (model.Comment, error)
	Like(id int64) (model.Comment, error)
}
