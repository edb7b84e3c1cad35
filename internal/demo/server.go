// Package demo serves a one-page site whose button lives inside an open
// shadow root, and drives a browser page to click it. It is a standalone
// exercise of shadow-DOM selection and is not used by the apply pipeline.
package demo

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Addr is the listen address of the demo server.
const Addr = "127.0.0.1:5000"

//go:embed static
var staticFS embed.FS

// NewRouter returns the demo HTTP handler: "/" serves the page and
// "/shadow.js" the script that builds the shadow root.
func NewRouter(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	static, _ := fs.Sub(staticFS, "static")

	r := chi.NewRouter()
	r.Use(HeadToGet)
	r.Use(SecurityHeaders(DefaultHeaders()))
	r.Use(RequestLog(logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFileFS(w, req, static, "index.html")
	})
	r.Get("/shadow.js", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFileFS(w, req, static, "shadow.js")
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		Logger(req.Context()).Debug("demo: health check")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	return r
}
