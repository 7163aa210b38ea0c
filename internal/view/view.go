// Package view drives a rendered word cloud the way the browser page does:
// it fetches comments, lays them out, shows a like overlay on hover, likes
// on click and submits the comment form, re-rendering after every change.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/client"
	"github.com/vector76/wordwall/internal/cloud"
	"github.com/vector76/wordwall/internal/model"
)

// API is the subset of the comment client the page uses.
type API interface {
	FetchComments(ctx context.Context) ([]model.Comment, error)
	Like(ctx context.Context, id int64) (model.Comment, error)
	CreateComment(ctx context.Context, fields map[string]string) (model.Comment, error)
}

// Display shows a rendered scene. Each call replaces what was shown before.
type Display interface {
	Show(s cloud.Scene) error
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(cloud.Scene) error

// Show calls f(s).
func (f DisplayFunc) Show(s cloud.Scene) error { return f(s) }

// Options configures a Page.
type Options struct {
	Width  int
	Height int

	// Alert surfaces rejected submissions to the user. Nil discards them.
	Alert func(msg string)

	Logger *zap.Logger
}

// Page holds the state of one comment wall view.
type Page struct {
	api      API
	renderer *cloud.Renderer
	display  Display
	alert    func(string)
	log      *zap.Logger
	width    int
	height   int

	// Form is the comment form submitted by Submit.
	Form *Form

	// showMu orders display updates; mu guards the fields below it and is
	// never held while calling into the display.
	showMu  sync.Mutex
	mu      sync.Mutex
	seq     uint64
	shown   uint64
	scene   cloud.Scene
	overlay *Overlay
}

// New returns a Page that fetches through api, lays out with renderer and
// shows scenes on display.
func New(api API, renderer *cloud.Renderer, display Display, opts Options) *Page {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Alert == nil {
		opts.Alert = func(string) {}
	}
	if opts.Width < 1 {
		opts.Width = 800
	}
	if opts.Height < 1 {
		opts.Height = 600
	}
	return &Page{
		api:      api,
		renderer: renderer,
		display:  display,
		alert:    opts.Alert,
		log:      opts.Logger,
		width:    opts.Width,
		height:   opts.Height,
		Form:     NewForm(),
	}
}

// Scene returns the scene currently shown.
func (p *Page) Scene() cloud.Scene {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scene
}

// Refresh fetches all comments and re-renders. When refreshes overlap, a
// response is discarded only if a more recently started refresh has already
// been shown. Fetch failures are logged and returned, leaving the previous
// scene in place.
func (p *Page) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	comments, err := p.api.FetchComments(ctx)
	if err != nil {
		p.log.Error("fetching comments", zap.Error(err))
		return fmt.Errorf("fetching comments: %w", err)
	}

	scene := p.renderer.Scene(comments, p.width, p.height)

	p.showMu.Lock()
	defer p.showMu.Unlock()

	p.mu.Lock()
	if seq < p.shown {
		p.mu.Unlock()
		p.log.Debug("dropping stale render", zap.Uint64("seq", seq), zap.Uint64("shown", p.shown))
		return nil
	}
	p.shown = seq
	p.scene = scene
	p.overlay = nil
	p.mu.Unlock()

	if err := p.display.Show(scene); err != nil {
		p.log.Error("showing scene", zap.Error(err))
		return fmt.Errorf("showing scene: %w", err)
	}
	return nil
}

// Like likes comment id and then re-renders. A failed like is logged and
// returned without re-fetching.
func (p *Page) Like(ctx context.Context, id int64) error {
	if _, err := p.api.Like(ctx, id); err != nil {
		p.log.Error("liking comment", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("liking comment %d: %w", id, err)
	}
	return p.Refresh(ctx)
}

// ErrNoOverlay is returned by Click when no word is hovered.
var ErrNoOverlay = errors.New("no like overlay shown")

// Click likes the comment under the current overlay.
func (p *Page) Click(ctx context.Context) error {
	o, ok := p.Overlay()
	if !ok {
		return ErrNoOverlay
	}
	return p.Like(ctx, o.CommentID)
}

// Submit posts the form. On success the form is cleared and the cloud
// re-rendered. A rejected submission is shown through the alert hook and
// leaves the form as it was. Transport failures are only logged.
func (p *Page) Submit(ctx context.Context) error {
	_, err := p.api.CreateComment(ctx, p.Form.Values())
	if err != nil {
		var fe *client.FormError
		if errors.As(err, &fe) {
			p.alert(fe.Error())
			return err
		}
		p.log.Error("submitting comment", zap.Error(err))
		return fmt.Errorf("submitting comment: %w", err)
	}

	p.Form.Reset()
	return p.Refresh(ctx)
}
