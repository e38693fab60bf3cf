package handlers

import (
	"net/http"

	"github.com/nkiryanov/feedbackadmin/internal/handlers/render"
)

func handleRoot() http.Handler {
	type response struct {
		Message   string `json:"message"`
		Version   string `json:"version"`
		APIPrefix string `json:"api_prefix"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{
			Message:   "Welcome to " + ServiceName,
			Version:   Version,
			APIPrefix: APIPrefix,
		})
	})
}

func handleNotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, "Not Found", http.StatusNotFound)
	})
}

// Allow header is set by the mux already
func handleMethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
}

// discardWriter keeps the status the mux would answer with and drops its plain text body
type discardWriter struct {
	header http.Header
	status int
}

func (w *discardWriter) Header() http.Header         { return w.header }
func (w *discardWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w *discardWriter) WriteHeader(code int)        { w.status = code }

// withEnvelopeFallback answers unmatched paths and methods with the error envelope
// instead of the mux's plain text 404 and 405
func withEnvelopeFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		dw := &discardWriter{header: http.Header{}}
		h.ServeHTTP(dw, r)

		switch dw.status {
		case http.StatusMethodNotAllowed:
			w.Header().Set("Allow", dw.header.Get("Allow"))
			handleMethodNotAllowed().ServeHTTP(w, r)
		default:
			handleNotFound().ServeHTTP(w, r)
		}
	})
}
