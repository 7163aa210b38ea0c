package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vector76/wordwall/internal/model"
)

// Store persists comments and their like counts.
type Store interface {
	List(opts ListOptions) ([]model.Comment, error)
	Get(id int64) (model.Comment, error)
	Create(text string) (model.Comment, error)
	Like(id int64) (model.Comment, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns a Store for the named backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return Load(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// FileStore holds comments in memory and persists them to a JSON file.
type FileStore struct {
	mu       sync.RWMutex
	comments map[int64]model.Comment
	nextID   int64
	filePath string
}

// fileData is the on-disk JSON format.
type fileData struct {
	Comments []model.Comment `json:"comments"`
}

// Load reads comments from the given file path, or initializes an empty
// store if the file does not exist.
func Load(path string) (*FileStore, error) {
	s := &FileStore{
		comments: make(map[int64]model.Comment),
		nextID:   1,
		filePath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parsing data file: %w", err)
	}

	for _, c := range fd.Comments {
		if c.Likes < 0 {
			c.Likes = 0
		}
		s.comments[c.ID] = c
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
	}

	return s, nil
}

// save writes all comments to disk atomically (temp file + rename).
// Caller must hold s.mu.
func (s *FileStore) save() error {
	fd := fileData{Comments: sortedNewestFirst(s.comments)}
	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling data: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, "comments-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Create validates text, assigns the next ID, and persists the comment.
func (s *FileStore) Create(text string) (model.Comment, error) {
	if errs := model.ValidateText(text); errs != nil {
		return model.Comment{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := model.NewComment(text)
	c.ID = s.nextID

	s.comments[c.ID] = c
	if err := s.save(); err != nil {
		delete(s.comments, c.ID)
		return model.Comment{}, err
	}
	s.nextID++

	return c, nil
}

// Get returns a comment by ID.
func (s *FileStore) Get(id int64) (model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, notFound(id)
	}
	return c, nil
}

// Like increments a comment's like count and persists.
func (s *FileStore) Like(id int64) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.comments[id]
	if !ok {
		return model.Comment{}, notFound(id)
	}

	c := old
	c.Likes++
	s.comments[id] = c

	if err := s.save(); err != nil {
		s.comments[id] = old
		return model.Comment{}, err
	}

	return c, nil
}

// All returns every comment, newest first.
func (s *FileStore) All() []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedNewestFirst(s.comments)
}

// Close is a no-op; every mutation is already on disk.
func (s *FileStore) Close() error { return nil }
