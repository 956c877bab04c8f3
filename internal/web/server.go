// Package web serves the browser front-end and a small JSON API.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fmuoria/veriskill/internal/analysis"
	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/export"
	"github.com/fmuoria/veriskill/internal/identity"
	"github.com/fmuoria/veriskill/internal/models"
	"github.com/fmuoria/veriskill/internal/session"
	"github.com/fmuoria/veriskill/internal/views"
	"github.com/google/uuid"
)

const (
	cookieName    = "veriskill_session"
	maxFormMemory = 32 << 20
	xlsxType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// browserSession is the per-cookie state: one controller, its own sign-in
// provider and view-local bits
type browserSession struct {
	ctrl     *session.Controller
	identity identity.Provider

	mu     sync.Mutex
	signUp bool
	notice string
	meta   export.ReportMeta
}

func (bs *browserSession) setNotice(msg string) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.notice = msg
}

// takeNotice returns the pending one-shot message and clears it
func (bs *browserSession) takeNotice() string {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	msg := bs.notice
	bs.notice = ""
	return msg
}

func (bs *browserSession) isSignUp() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.signUp
}

func (bs *browserSession) toggleSignUp() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.signUp = !bs.signUp
}

func (bs *browserSession) reportMeta() export.ReportMeta {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.meta
}

func (bs *browserSession) setReportMeta(meta export.ReportMeta) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.meta = meta
}

// ProviderFactory returns a fresh sign-in provider for one browser session.
// Providers hold tokens, so sessions never share one.
type ProviderFactory func() identity.Provider

// Server handles HTTP requests
type Server struct {
	newIdentity ProviderFactory
	encoder     session.Encoder
	analyzer    session.Analyzer
	maxBytes    int64
	log         *slog.Logger

	mu       sync.Mutex
	sessions map[string]*browserSession
}

// NewServer creates a new web server. maxBytes is only used to advertise the
// configured upload limit; the encoder enforces it.
func NewServer(newIdentity ProviderFactory, encoder session.Encoder, analyzer session.Analyzer, maxBytes int64, log *slog.Logger) *Server {
	return &Server{
		newIdentity: newIdentity,
		encoder:     encoder,
		analyzer:    analyzer,
		maxBytes:    maxBytes,
		log:         log,
		sessions:    make(map[string]*browserSession),
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /start", s.intent(func(bs *browserSession) error { return bs.ctrl.Start() }))
	mux.HandleFunc("POST /auth", s.handleAuth)
	mux.HandleFunc("POST /auth/mode", s.handleAuthMode)
	mux.HandleFunc("POST /auth/social/{provider}", s.handleSocial)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("POST /reset", s.intent(func(bs *browserSession) error { return bs.ctrl.Reset() }))
	mux.HandleFunc("POST /home", s.intent(func(bs *browserSession) error {
		bs.ctrl.NavigateHome()
		return nil
	}))
	mux.HandleFunc("POST /signout", s.intent(func(bs *browserSession) error {
		bs.identity.SignOut()
		bs.ctrl.SignOut()
		return nil
	}))
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /report.xlsx", s.handleReport)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

// session returns the caller's browser session, creating one when needed
func (s *Server) session(w http.ResponseWriter, r *http.Request) *browserSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(cookieName); err == nil {
		if bs, ok := s.sessions[c.Value]; ok {
			return bs
		}
	}

	id := uuid.NewString()
	bs := &browserSession{
		ctrl:     session.New(s.encoder, s.analyzer, s.log.With("session", id)),
		identity: s.newIdentity(),
	}
	s.sessions[id] = bs
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return bs
}

// intent wraps a controller call that ends with a redirect to the page
func (s *Server) intent(fn func(bs *browserSession) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs := s.session(w, r)
		if err := fn(bs); err != nil {
			bs.setNotice(err.Error())
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type pageData struct {
	Snap             session.Snapshot
	Nav              views.NavbarModel
	Auth             views.AuthText
	Providers        []string
	Notice           string
	Dashboard        *views.Dashboard
	LoaderMessages   []string
	LoaderIntervalMS int64
	LoaderHint       string
	UploadHint       string
	Accept           string
	DropRejected     string
}

// handleIndex renders the current view
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)
	snap := bs.ctrl.Snapshot()

	data := pageData{
		Snap:             snap,
		Nav:              views.Navbar(snap.Credential),
		Auth:             views.Auth(bs.isSignUp()),
		Providers:        identity.SocialProviders,
		Notice:           bs.takeNotice(),
		LoaderMessages:   views.LoaderMessages(),
		LoaderIntervalMS: views.LoaderInterval.Milliseconds(),
		LoaderHint:       views.LoaderHint,
		UploadHint:       views.UploadHint(s.maxBytes),
		Accept:           strings.Join(views.AcceptedExtensions, ","),
		DropRejected:     views.DropRejectedMessage,
	}
	if snap.Result != nil {
		d := views.NewDashboard(*snap.Result)
		data.Dashboard = &d
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log.Error("failed to render page", "view", snap.View, "err", err)
	}
}

// handleAuth captures the credential form in sign-in or sign-up mode
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)

	var (
		cred models.Credential
		err  error
	)
	if bs.isSignUp() {
		cred, err = bs.identity.SignUp(r.Context(), r.FormValue("name"), r.FormValue("email"), r.FormValue("password"))
	} else {
		cred, err = bs.identity.SignIn(r.Context(), r.FormValue("email"), r.FormValue("password"))
	}
	s.completeSignIn(w, r, bs, cred, err)
}

// handleAuthMode toggles between sign-in and sign-up
func (s *Server) handleAuthMode(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)
	bs.toggleSignUp()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSocial signs in through one of the social provider buttons
func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)
	cred, err := bs.identity.Social(r.Context(), r.PathValue("provider"))
	s.completeSignIn(w, r, bs, cred, err)
}

func (s *Server) completeSignIn(w http.ResponseWriter, r *http.Request, bs *browserSession, cred models.Credential, err error) {
	if err == nil {
		err = bs.ctrl.CompleteSignIn(cred)
	}
	if err != nil {
		s.log.Warn("sign-in failed", "err", err)
		bs.setNotice(err.Error())
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSubmit starts an analysis from the upload form
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	form, err := s.readForm(r)
	if err != nil {
		bs.setNotice(err.Error())
		return
	}

	if _, err := bs.ctrl.Submit(form); err != nil {
		bs.setNotice(err.Error())
		return
	}
	bs.setReportMeta(export.NewReportMeta(form.ProfileLink, form.Document.Name))
}

// readForm parses the multipart upload into a submission form. The document
// is held in memory only.
func (s *Server) readForm(r *http.Request) (models.SubmissionForm, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return models.SubmissionForm{}, fmt.Errorf("failed to parse form: %w", err)
	}

	form := models.SubmissionForm{ProfileLink: strings.TrimSpace(r.FormValue("linkedin"))}

	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return form, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	doc, err := readUpload(file, header)
	if err != nil {
		return form, err
	}
	if !views.IsDroppable(doc.MediaType) {
		return form, errors.New(views.DropRejectedMessage)
	}
	form.Document = doc
	return form, nil
}

func readUpload(file multipart.File, header *multipart.FileHeader) (*document.Document, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || strings.HasPrefix(mediaType, "application/octet-stream") {
		mediaType = mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename)))
	}
	return document.FromBytes(header.Filename, mediaType, data), nil
}

// handleState returns the snapshot for polling
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)
	s.respondJSON(w, http.StatusOK, bs.ctrl.Snapshot())
}

// handleReport streams the current result as a workbook
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	bs := s.session(w, r)
	snap := bs.ctrl.Snapshot()
	if snap.Result == nil {
		s.respondError(w, http.StatusNotFound, "no analysis result available")
		return
	}

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "veriskill_report_"+time.Now().Format("20060102_150405")+".xlsx"))
	if err := export.WriteReport(w, *snap.Result, bs.reportMeta()); err != nil {
		s.log.Error("failed to write report", "err", err)
	}
}

// handleAnalyze is the stateless JSON API: one multipart request, one verdict
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	form, err := s.readForm(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !form.Complete() {
		s.respondError(w, http.StatusBadRequest, session.ErrIncompleteForm.Error())
		return
	}

	doc := form.Document
	if err := analysis.CheckMediaType(doc.MediaType); err != nil {
		s.respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	encoded, err := s.encoder.Encode(r.Context(), doc)
	switch {
	case errors.Is(err, document.ErrDocumentTooLarge):
		s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), encoded, doc.MediaType, form.ProfileLink)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "err", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}
