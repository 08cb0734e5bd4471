// Package web serves the browser frontend, which forwards checks to the
// backend API and renders the highlight.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"monu/internal/domain"
	"monu/internal/logging"
	"monu/internal/server"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"kind": func(u domain.Unit) string { return u.Kind.String() },
}).ParseFS(templatesFS, "templates/*.html"))

// Checker is the subset of BackendClient the frontend needs.
type Checker interface {
	Check(ctx context.Context, text string) (*domain.CheckResult, error)
}

// Server is the frontend HTTP server.
type Server struct {
	checker Checker
	addr    string
}

func NewServer(checker Checker, addr string) *Server {
	return &Server{
		checker: checker,
		addr:    addr,
	}
}

type pageData struct {
	Text         string
	Result       *domain.CheckResult
	ErrorLabel   string
	ErrorMessage string
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleSubmit)

	var handler http.Handler = mux
	handler = server.SecurityHeadersMiddleware(handler)
	handler = server.RecoveryMiddleware(handler)
	handler = logging.CombinedMiddleware(handler)
	return handler
}

// ListenAndServe blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	return server.Run(ctx, "frontend", s.addr, s.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageData{})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	data := pageData{Text: text}

	if strings.TrimSpace(text) == "" {
		data.ErrorLabel = ErrorLabel(domain.ErrInvalidInput)
		data.ErrorMessage = "Please enter some text."
		s.render(w, r, http.StatusOK, data)
		return
	}

	res, err := s.checker.Check(r.Context(), text)
	if err != nil {
		logging.FromContext(r.Context()).Warn("check failed", "error", err)
		data.ErrorLabel = ErrorLabel(err)
		data.ErrorMessage = err.Error()
	} else {
		data.Result = res
	}
	s.render(w, r, http.StatusOK, data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logging.FromContext(r.Context()).Error("template render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// ErrorLabel maps an error to the label shown above its message.
func ErrorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "Invalid input"
	case errors.Is(err, domain.ErrOracleUnavailable):
		return "Service unavailable"
	case errors.Is(err, domain.ErrOracleMalformedOutput):
		return "Malformed response"
	case errors.Is(err, ErrConnection):
		return "Connection error"
	default:
		return "Error"
	}
}
