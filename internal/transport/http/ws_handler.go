package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ai-quiz-service/internal/app"
	"ai-quiz-service/internal/auth"
	"ai-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler drives one quiz session per websocket connection.
type WSHandler struct {
	store         app.ResultStore
	results       *app.ResultService
	verifier      *auth.Verifier
	submitTimeout time.Duration
	upgrader      websocket.Upgrader
}

func NewWSHandler(store app.ResultStore, verifier *auth.Verifier, submitTimeout time.Duration) *WSHandler {
	return &WSHandler{
		store:         store,
		results:       app.NewResultService(store),
		verifier:      verifier,
		submitTimeout: submitTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type familiarityPayload struct {
	Level int `json:"level"`
}

type answerPayload struct {
	Value any `json:"value"`
}

type limitPayload struct {
	Limit int `json:"limit"`
}

type introView struct {
	SessionID      string `json:"sessionId"`
	TotalQuestions int    `json:"totalQuestions"`
	Authenticated  bool   `json:"authenticated"`
}

type familiarityView struct {
	Levels   []domain.FamiliarityLevel `json:"levels"`
	Selected int                       `json:"selected"`
}

type questionView struct {
	Index   int                 `json:"index"`
	Total   int                 `json:"total"`
	ID      int                 `json:"id"`
	Type    domain.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Options []string            `json:"options,omitempty"`
	Score   int                 `json:"score"`
}

// ServeWS upgrades the request and runs the session protocol until the
// client disconnects. Identity comes from an optional token query param;
// an absent token means an anonymous session that cannot save results.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Identify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	bank := domain.Questions()
	session := app.NewSession(uuid.NewString(), bank)
	submitter := app.NewSubmitter(h.store, h.submitTimeout)

	send := make(chan outboundMessage[any], 16)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	var submissions sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// The submitter runs off the interactive path; its notice may land
	// after the read loop exits, so it must never block forever.
	notifier := app.NotifierFunc(func(notice domain.Notice) {
		select {
		case send <- outboundMessage[any]{Type: "notice", Payload: notice}:
		case <-done:
		}
	})

	send <- outboundMessage[any]{Type: "intro", Payload: introView{
		SessionID:      session.ID(),
		TotalQuestions: len(bank),
		Authenticated:  identity.Authenticated(),
	}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r.Context(), session, submitter, identity, inbound, send, &submissions, notifier)
	}

	close(done)
	submissions.Wait()
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(
	ctx context.Context,
	session *app.Session,
	submitter *app.Submitter,
	identity domain.Identity,
	inbound inboundMessage,
	send chan<- outboundMessage[any],
	submissions *sync.WaitGroup,
	notifier app.Notifier,
) {
	fail := func(msg string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	switch inbound.Type {
	case "start":
		if err := session.Start(); err != nil {
			fail(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "familiarity", Payload: familiarityView{
			Levels:   domain.FamiliarityLevels(),
			Selected: domain.DefaultFamiliarity,
		}}

	case "familiarity":
		var payload familiarityPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail("invalid familiarity payload")
			return
		}
		if err := session.ConfirmFamiliarity(payload.Level); err != nil {
			fail(err.Error())
			return
		}
		h.sendCurrentQuestion(session, send, fail)

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail("invalid answer payload")
			return
		}
		question, _, err := session.CurrentQuestion()
		if err != nil {
			fail(err.Error())
			return
		}
		if question.Type == domain.QuestionText {
			s, ok := payload.Value.(string)
			if !ok || strings.TrimSpace(s) == "" {
				fail(domain.ErrEmptyAnswer.Error())
				return
			}
		}
		feedback, err := session.SubmitAnswer(payload.Value)
		if err != nil {
			fail(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "reveal", Payload: feedback}

	case "advance":
		progress, err := session.Advance()
		if err != nil {
			fail(err.Error())
			return
		}
		if !progress.Completed {
			h.sendCurrentQuestion(session, send, fail)
			return
		}
		send <- outboundMessage[any]{Type: "completed", Payload: progress.Result}
		submissions.Add(1)
		go func(result domain.QuizResult) {
			defer submissions.Done()
			submitter.Submit(context.Background(), identity, result, notifier)
		}(progress.Result)

	case "restart":
		session.Restart()
		submitter.Reset()
		send <- outboundMessage[any]{Type: "intro", Payload: introView{
			SessionID:      session.ID(),
			TotalQuestions: session.Total(),
			Authenticated:  identity.Authenticated(),
		}}

	case "getResults":
		var payload limitPayload
		if len(inbound.Payload) > 0 {
			_ = json.Unmarshal(inbound.Payload, &payload)
		}
		results, err := h.results.GetResults(ctx, identity, payload.Limit)
		if err != nil {
			fail(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "results", Payload: results}

	case "getStats":
		stats, err := h.results.GetStats(ctx, identity)
		if err != nil {
			fail(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "stats", Payload: stats}

	case "getLeaderboard":
		var payload limitPayload
		if len(inbound.Payload) > 0 {
			_ = json.Unmarshal(inbound.Payload, &payload)
		}
		entries, err := h.results.GetLeaderboard(ctx, payload.Limit)
		if err != nil {
			fail(err.Error())
			return
		}
		send <- outboundMessage[any]{Type: "leaderboard", Payload: entries}

	default:
		fail("unsupported message type")
	}
}

func (h *WSHandler) sendCurrentQuestion(session *app.Session, send chan<- outboundMessage[any], fail func(string)) {
	question, index, err := session.CurrentQuestion()
	if err != nil {
		if result, ok := session.Result(); ok {
			// Empty bank: the session completed without questions.
			send <- outboundMessage[any]{Type: "completed", Payload: result}
			return
		}
		fail(err.Error())
		return
	}
	send <- outboundMessage[any]{Type: "question", Payload: questionView{
		Index:   index,
		Total:   session.Total(),
		ID:      question.ID,
		Type:    question.Type,
		Prompt:  question.Prompt,
		Options: question.Options,
		Score:   session.Score(),
	}}
}

// ServeLeaderboard is the public JSON endpoint for the ranking.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.results.GetLeaderboard(r.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}
