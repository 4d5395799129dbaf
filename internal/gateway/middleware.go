package gateway

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
)

// corsMiddleware allows the configured origin to call the API from a browser
func (s *Service) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.allowedOrigin
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers
func (s *Service) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware limits API calls and UI form posts per client IP.
// Page loads, health and metrics are not limited.
func (s *Service) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil || !rateLimited(r) {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := monitoring.ClientIP(r)
		allowed, err := s.rateLimiter.Allow(clientIP)
		if err != nil {
			s.logger.WithContext(r.Context()).WithError(err).Error("Rate limit check failed")
			s.writeErrorResponse(w, http.StatusInternalServerError, "rate limit check failed")
			return
		}
		if !allowed {
			s.metrics.RecordRateLimited(r.URL.Path)
			s.logger.Security(r.Context(), "rate_limit_exceeded", clientIP, map[string]interface{}{
				"path": r.URL.Path,
			})
			s.writeErrorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimited reports whether r counts against the caller's budget. Every
// POST can start a generation or change workspace state.
func rateLimited(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || r.Method == http.MethodPost
}

// recoveryMiddleware turns a handler panic into a 500 so one bad request
// cannot take the server down
func (s *Service) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.WithContext(r.Context()).
				WithField("panic", fmt.Sprint(rec)).
				WithField("stack", string(debug.Stack())).
				Error("Recovered from handler panic")
			s.writeErrorResponse(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
