package server

import (
	"net/http"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/utils"

	"github.com/go-chi/chi/v5/middleware"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id and logs it on completion.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = utils.GenerateID()
			}
			w.Header().Set(requestIDHeader, id)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.LogAPI(r.Method, r.URL.Path, ww.Status(), time.Since(start), id)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// answerOptions replies 200 to every OPTIONS request.
func answerOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
