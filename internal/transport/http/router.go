package http

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/app"
)

// RouterOptions configures the routes registered by NewRouter.
type RouterOptions struct {
	Debug          bool
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter wires the REST, websocket and health routes.
func NewRouter(service *app.QuizService, opts RouterOptions) *mux.Router {
	h := NewHandler(service, opts.Logger)
	ws := NewWSHandler(service, opts.AllowedOrigins, opts.Logger)

	r := mux.NewRouter()
	r.Use(requestLogger(opts.Logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", h.startSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.getSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.discardSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/answers", h.selectAnswer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/review", h.toggleReview).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/next", h.next).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/prev", h.prev).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/goto", h.goTo).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/visibility", h.visibility).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/end", h.endSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/result", h.result).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/reattempt", h.reattempt).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", h.leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{user}/theme", h.getTheme).Methods(http.MethodGet)
	api.HandleFunc("/preferences/{user}/theme", h.putTheme).Methods(http.MethodPut)
	api.HandleFunc("/preferences/{user}/theme/toggle", h.toggleTheme).Methods(http.MethodPost)

	if opts.Debug {
		r.HandleFunc("/debug/sessions/{id}/state", h.debugState).Methods(http.MethodGet)
	}
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the wrapped connection.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func requestLogger(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}
