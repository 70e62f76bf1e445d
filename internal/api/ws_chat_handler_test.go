package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"crisis-assist/internal/session"
)

func dialChat(t *testing.T, env *testEnv, sess *session.Session) *websocket.Conn {
	t.Helper()
	s := httptest.NewServer(env.router)
	t.Cleanup(s.Close)

	header := http.Header{}
	header.Set("Cookie", sessionCookie+"="+sess.ID)
	ws, _, err := websocket.DefaultDialer.Dial("ws"+s.URL[4:]+"/ws/chat", header)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) WSEvent {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("WebSocket read failed: %v", err)
	}
	var ev WSEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("bad event %s: %v", msg, err)
	}
	return ev
}

func TestWSChatHandler_Idle(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	ws := dialChat(t, env, env.store.Get(""))

	if ev := readEvent(t, ws); ev.Event != "idle" {
		t.Errorf("expected idle event, got %+v", ev)
	}
}

func TestWSChatHandler_TicksThenEnd(t *testing.T) {
	gen := &fakeGenerator{reply: "ok", release: make(chan struct{})}
	env := newTestEnv(t, gen, nil)
	sess := env.store.Get("")
	task, err := sess.Submit(testContext(t), "help")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	ws := dialChat(t, env, sess)

	ev := readEvent(t, ws)
	if ev.Event != "tick" || ev.TaskID != task.ID {
		t.Fatalf("expected tick for %s, got %+v", task.ID, ev)
	}

	close(gen.release)
	for ev.Event == "tick" {
		ev = readEvent(t, ws)
	}
	if ev.Event != "end" || ev.Status != string(session.StatusCompleted) {
		t.Errorf("expected completed end event, got %+v", ev)
	}
}

func TestWSChatHandler_Stop(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	env := newTestEnv(t, gen, nil)
	sess := env.store.Get("")
	if _, err := sess.Submit(testContext(t), "help"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	ws := dialChat(t, env, sess)
	readEvent(t, ws)

	if err := ws.WriteJSON(WSEvent{Event: "stop"}); err != nil {
		t.Fatalf("WebSocket write failed: %v", err)
	}
	ev := readEvent(t, ws)
	for ev.Event == "tick" {
		ev = readEvent(t, ws)
	}
	if ev.Event != "end" || ev.Status != string(session.StatusFailed) {
		t.Errorf("expected failed end event after stop, got %+v", ev)
	}
}

func TestWSChatHandler_NoSession(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	s := httptest.NewServer(env.router)
	defer s.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+s.URL[4:]+"/ws/chat", nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer ws.Close()

	if ev := readEvent(t, ws); ev.Event != "idle" {
		t.Errorf("expected idle event, got %+v", ev)
	}
	if n := env.store.Len(); n != 0 {
		t.Errorf("expected no stored sessions, got %d", n)
	}
}
