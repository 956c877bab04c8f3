// Package session holds the view-state machine shared by every front-end.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/fmuoria/veriskill/internal/analysis"
	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/models"
)

var (
	// ErrIncompleteForm is returned when a submission lacks a link or a document
	ErrIncompleteForm = errors.New("please provide both a LinkedIn URL and a resume")

	// ErrBusy is returned while an analysis is in progress
	ErrBusy = errors.New("an analysis is already in progress")

	// ErrInvalidTransition is returned when an intent does not apply to the current view
	ErrInvalidTransition = errors.New("action not available on this screen")
)

const fallbackErrorMessage = "An unexpected error occurred during analysis."

// Encoder turns a selected document into the text payload sent to the model
type Encoder interface {
	Encode(ctx context.Context, doc *document.Document) (string, error)
}

// Analyzer audits an encoded document
type Analyzer interface {
	Analyze(ctx context.Context, encodedDoc, mediaType, profileLink string) (models.AnalysisResult, error)
}

// Snapshot is a copy of the controller state handed to views
type Snapshot struct {
	View       models.View            `json:"view"`
	Credential *models.Credential     `json:"credential,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Result     *models.AnalysisResult `json:"result,omitempty"`
}

// Listener is called after every state change
type Listener func(Snapshot)

// Controller owns the state of one user session
type Controller struct {
	encoder  Encoder
	analyzer Analyzer
	log      *slog.Logger

	mu         sync.Mutex
	state      Snapshot
	generation uint64
	listeners  map[int]Listener
	nextID     int
}

// New creates a controller on the landing view
func New(encoder Encoder, analyzer Analyzer, log *slog.Logger) *Controller {
	return &Controller{
		encoder:   encoder,
		analyzer:  analyzer,
		log:       log,
		state:     Snapshot{View: models.ViewLanding},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn for state changes and returns a function removing it
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Start leaves the landing page: to the form when signed in, otherwise to sign-in
func (c *Controller) Start() error {
	return c.update(func(s *Snapshot) error {
		if s.View == models.ViewInProgress {
			return ErrBusy
		}
		if s.Credential != nil {
			s.View = models.ViewUpload
		} else {
			s.View = models.ViewCredentialEntry
		}
		return nil
	})
}

// CompleteSignIn stores the captured credential and returns to the landing page
func (c *Controller) CompleteSignIn(cred models.Credential) error {
	return c.update(func(s *Snapshot) error {
		if s.View != models.ViewCredentialEntry {
			return ErrInvalidTransition
		}
		s.Credential = &cred
		s.View = models.ViewLanding
		return nil
	})
}

// Submit starts an analysis of the form. The returned channel is closed once
// the outcome has been applied to the state (or dropped as stale).
func (c *Controller) Submit(form models.SubmissionForm) (<-chan struct{}, error) {
	c.mu.Lock()
	switch {
	case c.state.View == models.ViewInProgress:
		c.mu.Unlock()
		return nil, ErrBusy
	case c.state.View != models.ViewUpload:
		c.mu.Unlock()
		return nil, ErrInvalidTransition
	case !form.Complete():
		c.mu.Unlock()
		return nil, ErrIncompleteForm
	}

	c.generation++
	gen := c.generation
	c.state.View = models.ViewInProgress
	c.state.Error = ""
	c.state.Result = nil
	snap, listeners := c.state.clone(), c.listenersLocked()
	c.mu.Unlock()

	c.log.Info("analysis submitted",
		"document", form.Document.Name,
		"media_type", form.Document.MediaType,
		"size", form.Document.Size)
	notify(listeners, snap)

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := c.run(context.Background(), form)
		c.finish(gen, result, err)
	}()

	return done, nil
}

// run reads the document fully, then issues the single analysis request
func (c *Controller) run(ctx context.Context, form models.SubmissionForm) (models.AnalysisResult, error) {
	doc := form.Document
	if err := analysis.CheckMediaType(doc.MediaType); err != nil {
		return models.AnalysisResult{}, err
	}

	encoded, err := c.encoder.Encode(ctx, doc)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	return c.analyzer.Analyze(ctx, encoded, doc.MediaType, form.ProfileLink)
}

func (c *Controller) finish(gen uint64, result models.AnalysisResult, err error) {
	c.mu.Lock()
	if gen != c.generation || c.state.View != models.ViewInProgress {
		c.mu.Unlock()
		c.log.Debug("dropping stale analysis outcome", "generation", gen)
		return
	}

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallbackErrorMessage
		}
		c.state.View = models.ViewUpload
		c.state.Error = msg
		c.state.Result = nil
	} else {
		c.state.View = models.ViewResults
		c.state.Error = ""
		c.state.Result = &result
	}
	snap, listeners := c.state.clone(), c.listenersLocked()
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("analysis failed", "err", err)
	}
	notify(listeners, snap)
}

// Reset clears the last outcome and shows an empty form
func (c *Controller) Reset() error {
	return c.update(func(s *Snapshot) error {
		switch s.View {
		case models.ViewInProgress:
			return ErrBusy
		case models.ViewResults, models.ViewUpload:
		default:
			return ErrInvalidTransition
		}
		s.View = models.ViewUpload
		s.Error = ""
		s.Result = nil
		return nil
	})
}

// NavigateHome returns to the landing page from any view
func (c *Controller) NavigateHome() {
	_ = c.update(func(s *Snapshot) error {
		c.generation++
		s.View = models.ViewLanding
		s.Error = ""
		s.Result = nil
		return nil
	})
}

// SignOut forgets the credential and the last outcome
func (c *Controller) SignOut() {
	_ = c.update(func(s *Snapshot) error {
		c.generation++
		s.View = models.ViewCredentialEntry
		s.Credential = nil
		s.Error = ""
		s.Result = nil
		return nil
	})
}

// update applies fn under the lock and notifies listeners when it succeeds
func (c *Controller) update(fn func(s *Snapshot) error) error {
	c.mu.Lock()
	if err := fn(&c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	snap, listeners := c.state.clone(), c.listenersLocked()
	c.mu.Unlock()

	c.log.Debug("view changed", "view", snap.View)
	notify(listeners, snap)
	return nil
}

func (c *Controller) listenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Credential != nil {
		cred := *s.Credential
		out.Credential = &cred
	}
	if s.Result != nil {
		result := *s.Result
		result.Skills = slices.Clone(s.Result.Skills)
		out.Result = &result
	}
	return out
}
