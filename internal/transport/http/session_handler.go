package http

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"study-quiz-service/internal/app"
	"study-quiz-service/internal/domain"
	"study-quiz-service/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SessionHandler runs one quiz attempt per websocket connection. The client
// sends commands; the engine pushes state, tick and results events back.
type SessionHandler struct {
	quizzes         *app.QuizService
	questionSeconds int
	warningSeconds  int
}

func NewSessionHandler(quizzes *app.QuizService, questionSeconds, warningSeconds int) *SessionHandler {
	return &SessionHandler{
		quizzes:         quizzes,
		questionSeconds: questionSeconds,
		warningSeconds:  warningSeconds,
	}
}

type sessionCommand struct {
	Action string `json:"action"`
	Option *int   `json:"option,omitempty"`
}

type sessionError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topicName := r.URL.Query().Get("topic")
	if topicName == "" {
		http.Error(w, "missing topic parameter", http.StatusBadRequest)
		return
	}

	topics, err := h.quizzes.GetTopics(r.Context(), topicName)
	if err != nil {
		// Keep the study flow alive even when the store is down.
		log.Printf("session: load %s failed, using demo topics: %v", topicName, err)
		topics = domain.DemoTopics(topicName)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("session: upgrade: %v", err)
		return
	}

	sessionID := uuid.NewString()
	log.Printf("session %s: started for topic %s", sessionID, topicName)

	engine := session.NewEngine(topics, session.TickerScheduler{})
	engine.SetCountdown(h.questionSeconds, h.warningSeconds)

	send := make(chan interface{}, sendBuffer)
	engine.SetListener(func(event session.Event) {
		select {
		case send <- event:
		default:
			// A client this far behind is beyond saving; drop the event.
			log.Printf("session %s: send buffer full, dropping event", sessionID)
		}
	})

	done := make(chan struct{})
	go h.writeLoop(conn, send, done)

	send <- session.Event{Type: session.EventState, State: engine.Snapshot()}
	h.readLoop(conn, engine, send, sessionID)

	close(done)
	engine.GoHome()
	log.Printf("session %s: closed", sessionID)
}

// writeLoop owns all writes to the connection, including pings.
func (h *SessionHandler) writeLoop(conn *websocket.Conn, send <-chan interface{}, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SessionHandler) readLoop(conn *websocket.Conn, engine *session.Engine, send chan<- interface{}, sessionID string) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var cmd sessionCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session %s: read: %v", sessionID, err)
			}
			return
		}
		if err := h.apply(engine, cmd); err != nil {
			select {
			case send <- sessionError{Type: "error", Error: err.Error()}:
			default:
			}
		}
	}
}

func (h *SessionHandler) apply(engine *session.Engine, cmd sessionCommand) error {
	switch cmd.Action {
	case "start":
		return engine.Start()
	case "select":
		if cmd.Option == nil {
			return session.ErrOptionOutOfRange
		}
		return engine.SelectOption(*cmd.Option)
	case "skip":
		return engine.Skip()
	case "next":
		return engine.Advance()
	case "end":
		return engine.End()
	case "restart":
		return engine.Restart()
	case "back":
		return engine.BackToReading()
	case "home":
		engine.GoHome()
		return nil
	default:
		return &unknownActionError{action: cmd.Action}
	}
}

type unknownActionError struct {
	action string
}

func (e *unknownActionError) Error() string {
	return "unknown action: " + e.action
}
