package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// QuizWSHandler runs a quiz session over a websocket. The session state lives
// on the connection's stack; closing the socket abandons the attempt with
// nothing persisted.
type QuizWSHandler struct {
	engine   *app.Engine
	upgrader websocket.Upgrader
}

func NewQuizWSHandler(engine *app.Engine) *QuizWSHandler {
	return &QuizWSHandler{
		engine: engine,
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

type selectPayload struct {
	Option string `json:"option"`
}

type questionPayload struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
	Progress float64  `json:"progress"`
}

// ServeWS upgrades the request and drives Loading -> Answering -> Completed
// for one session.
func (h *QuizWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.engine.Load(r.Context(), userID, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionView(session)})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeWSError(conn, "invalid select payload")
				continue
			}
			session, err = h.engine.SelectOption(session, payload.Option)
			if err != nil {
				writeWSError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionView(session)})
		case "advance":
			session, err = h.engine.Advance(session)
			if err != nil {
				writeWSError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionView(session)})
		case "complete":
			next, result, err := h.engine.Complete(r.Context(), session)
			if err != nil {
				writeWSError(conn, err.Error())
				continue
			}
			session = next
			_ = conn.WriteJSON(outboundMessage[domain.CompletionResult]{Type: "completed", Payload: result})
		default:
			writeWSError(conn, "unsupported message type")
		}
	}
}

func questionView(s app.Session) questionPayload {
	q := s.CurrentQuestion()
	return questionPayload{
		Index:    s.Current,
		Total:    len(s.Content.Questions),
		Text:     q.Text,
		Options:  q.Options,
		Selected: s.Selections[s.Current],
		Progress: s.Progress(),
	}
}

func writeWSError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}
