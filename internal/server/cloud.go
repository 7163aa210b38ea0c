package server

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/cloud"
	"github.com/vector76/wordwall/internal/store"
)

// Bounds on requested cloud dimensions.
const (
	minCanvas = 50
	maxCanvas = 4000
)

// scene lays out all comments for the width and height query parameters.
// Missing, malformed or non-positive values fall back to the configured
// size; the rest are clamped to [minCanvas, maxCanvas].
func (s *Server) scene(r *http.Request) (cloud.Scene, error) {
	q := r.URL.Query()
	width := canvasParam(q.Get("width"), s.config.CloudWidth)
	height := canvasParam(q.Get("height"), s.config.CloudHeight)

	comments, err := s.store.List(store.ListOptions{})
	if err != nil {
		return cloud.Scene{}, err
	}
	return s.renderer.Scene(comments, width, height), nil
}

func canvasParam(v string, def int) int {
	return max(min(intParam(v, def), maxCanvas), minCanvas)
}

// handleCloudFragment handles GET /cloud: the placeholder paragraph or an
// inline SVG, ready to replace the word-cloud container's contents.
func (s *Server) handleCloudFragment(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scene(r)
	if err != nil {
		s.log.Error("rendering cloud", zap.Error(err))
		http.Error(w, "failed to render cloud", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := cloud.WriteSVG(&buf, sc); err != nil {
		s.log.Error("writing svg", zap.Error(err))
		http.Error(w, "failed to render cloud", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleCloudPNG handles GET /cloud.png.
func (s *Server) handleCloudPNG(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scene(r)
	if err != nil {
		s.log.Error("rendering cloud", zap.Error(err))
		http.Error(w, "failed to render cloud", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := cloud.WritePNG(&buf, sc, s.font); err != nil {
		s.log.Error("encoding png", zap.Error(err))
		http.Error(w, "failed to render cloud", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleCloudJSON handles GET /api/cloud: the laid out scene as JSON.
func (s *Server) handleCloudJSON(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scene(r)
	if err != nil {
		s.log.Error("rendering cloud", zap.Error(err))
		jsonError(w, "failed to render cloud", http.StatusInternalServerError)
		return
	}
	if sc.Words == nil {
		sc.Words = []cloud.Word{}
	}
	jsonOK(w, sc)
}
