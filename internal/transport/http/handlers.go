package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// Handler serves the REST surface of the quiz.
type Handler struct {
	service   *app.QuizService
	validator *requestValidator
	log       zerolog.Logger
	loc       *time.Location
}

func NewHandler(service *app.QuizService, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: newRequestValidator(),
		log:       log.With().Str("component", "http").Logger(),
		loc:       time.Local,
	}
}

type startRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type answerRequest struct {
	QuestionID  string `json:"questionId" validate:"required"`
	OptionIndex *int   `json:"optionIndex" validate:"required,min=0"`
}

type gotoRequest struct {
	Position *int `json:"position" validate:"required,min=0"`
}

type visibilityRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=dark light"`
}

type themeResponse struct {
	User  string       `json:"user"`
	Theme domain.Theme `json:"theme"`
}

type leaderboardItem struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	TS      int64  `json:"ts"`
	Display string `json:"display"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		writeBindError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validator.check(&req); err != nil {
		writeBindError(w, err)
		return
	}

	session, err := h.service.Start(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.View)
}

func (h *Handler) discardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := h.validator.bind(r, &req); err != nil {
		writeBindError(w, err)
		return
	}
	view, err := h.service.Select(r.Context(), mux.Vars(r)["id"], req.QuestionID, *req.OptionIndex)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) toggleReview(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.ToggleReview)
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.Next)
}

func (h *Handler) prev(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, h.service.Prev)
}

func (h *Handler) goTo(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := h.validator.bind(r, &req); err != nil {
		writeBindError(w, err)
		return
	}
	view, err := h.service.GoTo(r.Context(), mux.Vars(r)["id"], *req.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) visibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := h.validator.bind(r, &req); err != nil {
		writeBindError(w, err)
		return
	}
	out, err := h.service.ReportVisibility(r.Context(), mux.Vars(r)["id"], *req.Hidden)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.End(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Result(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) reattempt(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Reattempt(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := make([]leaderboardItem, len(entries))
	for i, e := range entries {
		items[i] = leaderboardItem{
			Name:    e.Name,
			Score:   e.Score,
			TS:      e.Timestamp.UnixMilli(),
			Display: e.Display(h.loc),
		}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	theme, err := h.service.Theme(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{User: user, Theme: theme})
}

func (h *Handler) putTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := h.validator.bind(r, &req); err != nil {
		writeBindError(w, err)
		return
	}
	user := mux.Vars(r)["user"]
	if err := h.service.SetTheme(r.Context(), user, domain.Theme(req.Theme)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{User: user, Theme: domain.Theme(req.Theme)})
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	theme, err := h.service.ToggleTheme(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{User: user, Theme: theme})
}

// debugState is the server-side stand-in for the window.__quizState hook.
func (h *Handler) debugState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (domain.SessionView, error)) {
	view, err := op(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
