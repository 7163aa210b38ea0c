package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/model"
	"github.com/vector76/wordwall/internal/store"
)

// maxFormMemory bounds multipart parsing; comment forms are tiny.
const maxFormMemory = 1 << 20

// jsonError writes a JSON error response with the given status code.
func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// jsonFieldErrors writes a 400 with per-field validation messages.
func jsonFieldErrors(w http.ResponseWriter, errs model.FieldErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{"errors": errs})
}

// jsonOK writes a JSON response with status 200.
func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// jsonCreated writes a JSON response with status 201.
func jsonCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(v)
}

// handleListComments handles GET /api/comments.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	comments, err := s.store.List(store.ListOptions{
		Query: q.Get("q"),
		Limit: intParam(q.Get("limit"), 0),
	})
	if err != nil {
		s.log.Error("listing comments", zap.Error(err))
		jsonError(w, "failed to list comments", http.StatusInternalServerError)
		return
	}
	jsonOK(w, comments)
}

// handleCreateComment handles POST /api/comments with a multipart or
// urlencoded form body.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		if isBodyTooLarge(err) {
			jsonError(w, msgBodyTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid form body", http.StatusBadRequest)
		return
	}

	created, err := s.store.Create(r.PostFormValue("text"))
	if err != nil {
		var fe model.FieldErrors
		if errors.As(err, &fe) {
			jsonFieldErrors(w, fe)
			return
		}
		s.log.Error("creating comment", zap.Error(err))
		jsonError(w, "failed to save comment", http.StatusInternalServerError)
		return
	}

	s.log.Info("comment created", zap.Int64("id", created.ID))
	jsonCreated(w, created)
}

// handleLikeComment handles POST /api/comments/:id/like.
func (s *Server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		jsonError(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	liked, err := s.store.Like(id)
	if err != nil {
		var notFoundErr *store.NotFoundError
		if errors.As(err, &notFoundErr) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("liking comment", zap.Int64("id", id), zap.Error(err))
		jsonError(w, "failed to like comment", http.StatusInternalServerError)
		return
	}

	jsonOK(w, liked)
}

// parseForm parses multipart bodies and falls back to urlencoded ones.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// intParam parses a positive integer query value, returning defaultVal when
// it is missing or invalid.
func intParam(val string, defaultVal int) int {
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return defaultVal
	}
	return n
}
