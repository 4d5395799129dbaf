// Package web serves the server-rendered workspace page. Every browser
// session gets its own workspace, identified by a cookie. Only loading the
// page starts a session; other routes need the cookie it issued.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/workspace"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// CookieName holds the workspace session id
const CookieName = "acda_session"

const maxFormBytes = 1 << 20

// Handler serves the workspace UI
type Handler struct {
	store        *workspace.Store
	logger       *logger.Logger
	cookieMaxAge time.Duration
	secureCookie bool
}

// Option configures a Handler
type Option func(*Handler)

// WithSecureCookie marks the session cookie Secure, for TLS deployments
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) { h.secureCookie = secure }
}

// WithCookieMaxAge sets the session cookie lifetime; match it to the
// workspace idle TTL
func WithCookieMaxAge(d time.Duration) Option {
	return func(h *Handler) { h.cookieMaxAge = d }
}

// NewHandler creates the UI handler over store
func NewHandler(store *workspace.Store, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{store: store, logger: log, cookieMaxAge: time.Hour}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the UI routes on r behind the error boundary
func (h *Handler) Register(r *mux.Router) {
	ui := r.NewRoute().Subrouter()
	ui.Use(h.errorBoundary)

	ui.HandleFunc("/", h.handlePage).Methods(http.MethodGet)
	ui.HandleFunc("/transcript", h.handleTranscript).Methods(http.MethodPost)
	ui.HandleFunc("/record", h.handleRecord).Methods(http.MethodPost)
	ui.HandleFunc("/view/{mode}", h.handleView).Methods(http.MethodGet)
	ui.HandleFunc("/copy", h.handleCopy).Methods(http.MethodGet)
	ui.HandleFunc("/export.pdf", h.handleExport).Methods(http.MethodGet)
	ui.HandleFunc("/assets/app.css", asset("text/css; charset=utf-8", render.Stylesheet)).Methods(http.MethodGet)
	ui.HandleFunc("/assets/app.js", asset("text/javascript; charset=utf-8", render.Script)).Methods(http.MethodGet)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	app, ok := h.session(r)
	if !ok {
		app = h.startSession(w)
	}
	h.render(w, r, http.StatusOK, render.Page(app.Snapshot()))
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	app, ok := h.session(r)
	if !ok {
		redirectHome(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// a disabled textarea is not submitted, so absence means "unchanged"
	if _, ok := r.PostForm["transcript"]; ok {
		app.SetTranscript(r.PostForm.Get("transcript"))
	}

	switch action := r.PostForm.Get("action"); action {
	case "generate":
		if err := app.Submit(r.Context()); err != nil {
			h.logger.WithContext(r.Context()).
				WithField("error_type", types.TypeOf(err)).
				Debug("Generation did not produce a note")
		}
	case "clear":
		app.Clear()
	case "example":
		app.UseExample()
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", action), http.StatusBadRequest)
		return
	}

	redirectHome(w, r)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	app, ok := h.session(r)
	if !ok {
		redirectHome(w, r)
		return
	}

	// a recording outlives the request that started it
	if _, err := app.ToggleRecording(context.WithoutCancel(r.Context())); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Debug("Dictation toggle failed")
	}

	redirectHome(w, r)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	view, ok := render.ParseView(mux.Vars(r)["mode"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	if app, ok := h.session(r); ok {
		app.SetView(view)
	}
	redirectHome(w, r)
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	app, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	text, err := app.CopyText()
	if errors.Is(err, workspace.ErrNoNote) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		panic(err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(text))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	app, ok := h.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	note, err := app.Note()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := render.ExportPDF(note, &buf); err != nil {
		panic(err)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.ExportFilename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// session returns the workspace named by the request's cookie
func (h *Handler) session(r *http.Request) (*workspace.App, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return h.store.Get(c.Value)
}

// startSession creates a workspace and issues its cookie
func (h *Handler) startSession(w http.ResponseWriter) *workspace.App {
	app, id := h.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return app
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render buffers the component so a failure midway can still be replaced by
// the error boundary
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		panic(fmt.Errorf("render page: %w", err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func asset(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write([]byte(body))
	}
}
