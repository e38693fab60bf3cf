package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/nkiryanov/feedbackadmin/internal/handlers/render"
)

// headerWriter remembers whether the response was started
type headerWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(statusCode int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *headerWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(p)
}

// RecoverMiddleware turns handler panic into generic 500 response
// The panic value and stack go to the log only
// A response already started is left as is, the client gets it truncated
func RecoverMiddleware(l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			w := &headerWriter{ResponseWriter: rw}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l.Error("panic while serving request",
					"method", r.Method,
					"uri", r.RequestURI,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				if w.wroteHeader {
					return
				}
				render.InternalError(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
