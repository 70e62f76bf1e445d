package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crisis-assist/internal/session"
)

// tickInterval is how often a pending answer's elapsed time is pushed.
const tickInterval = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket connection wrapper with mutex for thread-safe writes
type safeWSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWSConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *safeWSConn) ReadMessage() (int, []byte, error) {
	return s.conn.ReadMessage()
}

func (s *safeWSConn) Close() error {
	return s.conn.Close()
}

// WSEvent is every frame on /ws/chat, in both directions.
type WSEvent struct {
	Event   string  `json:"event"` // tick | end | idle | stop
	TaskID  string  `json:"task_id,omitempty"`
	Elapsed float64 `json:"elapsed,omitempty"`
	Status  string  `json:"status,omitempty"`
}

// WSChatHandler streams the progress of the caller's pending answer: a tick
// with the elapsed seconds every tickInterval, then one end frame. A stop
// frame from the client cancels the answer.
func WSChatHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := lookupSession(c, d)
		rawConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			d.Logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		conn := &safeWSConn{conn: rawConn}
		defer conn.Close()

		var task *session.Task
		if sess != nil {
			task = sess.Pending()
		}
		if task == nil {
			conn.WriteJSON(WSEvent{Event: "idle"})
			return
		}

		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var ev WSEvent
				if json.Unmarshal(msg, &ev) == nil && ev.Event == "stop" {
					d.Logger.Info("answer cancelled by client", zap.String("task", task.ID))
					task.Cancel()
				}
			}
		}()

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-task.Done():
				conn.WriteJSON(WSEvent{
					Event:   "end",
					TaskID:  task.ID,
					Elapsed: task.Elapsed().Seconds(),
					Status:  string(task.Status()),
				})
				return
			case <-stopped:
				return
			case <-ticker.C:
				if err := conn.WriteJSON(WSEvent{Event: "tick", TaskID: task.ID, Elapsed: task.Elapsed().Seconds()}); err != nil {
					return
				}
			}
		}
	}
}
