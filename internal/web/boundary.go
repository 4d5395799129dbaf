package web

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/render"
)

// errorBoundary shows a diagnostic page instead of a blank screen when a UI
// handler panics
func (h *Handler) errorBoundary(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			details := fmt.Sprint(rec)
			h.logger.WithContext(r.Context()).
				WithField("panic", details).
				WithField("stack", string(debug.Stack())).
				Error("Workspace page failed")

			var buf bytes.Buffer
			if err := render.ErrorBoundary(details).Render(r.Context(), &buf); err != nil {
				http.Error(w, "Application Error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write(buf.Bytes())
		}()

		next.ServeHTTP(w, r)
	})
}
