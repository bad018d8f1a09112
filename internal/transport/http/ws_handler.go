package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.QuizService, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker allows every origin when the list is empty.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
}

type gotoPayload struct {
	Position int `json:"position"`
}

type visibilityPayload struct {
	Hidden bool `json:"hidden"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// msgClose is never written as JSON; the writer turns it into a close frame.
const msgClose = "close"

// ServeWS upgrades the request and streams session snapshots until the client leaves.
// The last message for a finished session is an "ended" outcome; a discarded
// session gets a normal close frame instead.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if msg.Type == msgClose {
				reason, _ := msg.Payload.(string)
				frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
				if err := conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second)); err != nil {
					h.log.Debug().Err(err).Str("session", sessionID).Msg("ws close error")
				}
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("session", sessionID).Msg("ws write error")
				return
			}
		}
	}()

	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		case <-closeSignals:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				if !enqueue(outboundMessage[any]{Type: "session", Payload: view}) {
					return
				}
				if view.Ended {
					if view.Reason == domain.EndDiscarded {
						enqueue(outboundMessage[any]{Type: msgClose, Payload: "session discarded"})
					} else {
						h.sendOutcome(ctx, sessionID, enqueue)
					}
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, sessionID, inbound, enqueue); err != nil {
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one inbound message. Successful mutations are echoed through the subscription.
func (h *WSHandler) dispatch(ctx context.Context, sessionID string, msg inboundMessage, enqueue func(outboundMessage[any]) bool) error {
	var err error
	switch msg.Type {
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errInvalidPayload("answer")
		}
		_, err = h.service.Select(ctx, sessionID, p.QuestionID, p.OptionIndex)
	case "review":
		_, err = h.service.ToggleReview(ctx, sessionID)
	case "next":
		_, err = h.service.Next(ctx, sessionID)
	case "prev":
		_, err = h.service.Prev(ctx, sessionID)
	case "goto":
		var p gotoPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errInvalidPayload("goto")
		}
		_, err = h.service.GoTo(ctx, sessionID, p.Position)
	case "visibility":
		var p visibilityPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errInvalidPayload("visibility")
		}
		var out domain.VisibilityOutcome
		out, err = h.service.ReportVisibility(ctx, sessionID, p.Hidden)
		if err == nil && out.Message != "" {
			enqueue(outboundMessage[any]{Type: "warning", Payload: out})
		}
	case "end":
		_, err = h.service.End(ctx, sessionID)
	default:
		return errUnsupported
	}
	return err
}

func (h *WSHandler) sendOutcome(ctx context.Context, sessionID string, enqueue func(outboundMessage[any]) bool) {
	// End is idempotent; for an already finished session it only collects the outcome.
	outcome, err := h.service.End(ctx, sessionID)
	if err != nil {
		enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	enqueue(outboundMessage[any]{Type: "ended", Payload: outcome})
}

var errUnsupported = errors.New("unsupported message type")

func errInvalidPayload(kind string) error { return fmt.Errorf("invalid %s payload", kind) }
