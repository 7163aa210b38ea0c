package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vector76/wordwall/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	created_at TEXT NOT NULL,
	likes INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0)
);
CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at);
`

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore keeps comments in a SQLite database.
type SQLStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Create validates text and inserts a new comment.
func (s *SQLStore) Create(text string) (model.Comment, error) {
	if errs := model.ValidateText(text); errs != nil {
		return model.Comment{}, errs
	}

	c := model.NewComment(text)
	res, err := s.db.Exec(
		`INSERT INTO comments (text, created_at, likes) VALUES (?, ?, 0)`,
		c.Text, c.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return model.Comment{}, fmt.Errorf("inserting comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return model.Comment{}, fmt.Errorf("reading comment id: %w", err)
	}
	return c, nil
}

// Get returns a comment by ID.
func (s *SQLStore) Get(id int64) (model.Comment, error) {
	row := s.db.QueryRow(`SELECT id, text, created_at, likes FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, notFound(id)
	}
	return c, err
}

// Like increments a comment's like count and returns the updated row.
func (s *SQLStore) Like(id int64) (model.Comment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Comment{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE comments SET likes = likes + 1 WHERE id = ?`, id)
	if err != nil {
		return model.Comment{}, fmt.Errorf("updating likes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Comment{}, fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return model.Comment{}, notFound(id)
	}

	c, err := scanComment(tx.QueryRow(`SELECT id, text, created_at, likes FROM comments WHERE id = ?`, id))
	if err != nil {
		return model.Comment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Comment{}, fmt.Errorf("committing like: %w", err)
	}
	return c, nil
}

// List returns comments matching opts, newest first.
func (s *SQLStore) List(opts ListOptions) ([]model.Comment, error) {
	query := `SELECT id, text, created_at, likes FROM comments`
	var args []any
	if opts.Query != "" {
		query += ` WHERE instr(lower(text), ?) > 0`
		args = append(args, strings.ToLower(opts.Query))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (model.Comment, error) {
	var c model.Comment
	var created string
	if err := row.Scan(&c.ID, &c.Text, &created, &c.Likes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Comment{}, err
		}
		return model.Comment{}, fmt.Errorf("scanning comment: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return model.Comment{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	c.CreatedAt = t
	return c, nil
}
