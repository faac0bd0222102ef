package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/udyamsetu/platform/internal/assistant"
)

type stubSessions map[string]uint64

func (s stubSessions) ResolveSession(_ context.Context, sid string) (uint64, error) {
	uid, ok := s[sid]
	if !ok {
		return 0, errors.New("session not found")
	}
	return uid, nil
}

func newTestServer(t *testing.T, sessions stubSessions) (*httptest.Server, *Gateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := NewGateway(sessions, NewRegistry(), assistant.Default())
	r := gin.New()
	r.GET("/ws", g.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, g
}

func dial(t *testing.T, srv *httptest.Server, sid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	hdr := http.Header{}
	if sid != "" {
		hdr.Set("Cookie", SessionCookie+"="+sid)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	if err != nil {
		t.Fatalf("dial: %v (resp=%v)", err, resp)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f outboundFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var f outboundFrame
	if err := conn.ReadJSON(&f); err == nil {
		t.Fatalf("expected no frame, got %+v", f)
	}
}

func waitForConns(t *testing.T, g *Gateway, userID uint64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.Registry().ConnCount(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %d never reached %d connections", userID, want)
}

func TestGateway_RejectsWithoutValidSession(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"good": 1})

	for _, sid := range []string{"", "garbage"} {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		hdr := http.Header{}
		if sid != "" {
			hdr.Set("Cookie", SessionCookie+"="+sid)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(url, hdr)
		if err == nil {
			conn.Close()
			t.Fatalf("dial with sid=%q should have failed", sid)
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for sid=%q, got %v", sid, resp)
		}
		resp.Body.Close()
	}

	if got := g.Registry().ConnCount(1); got != 0 {
		t.Fatalf("rejected connections must not be registered, got %d", got)
	}
}

func TestGateway_RejectsCrossOriginUpgrade(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"good": 1})

	// a browser on another site attaches the cookie anyway; the upgrade
	// must be refused on the Origin header
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	hdr := http.Header{}
	hdr.Set("Cookie", SessionCookie+"=good")
	hdr.Set("Origin", "http://evil.example")

	conn, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	if err == nil {
		conn.Close()
		t.Fatal("cross-origin dial should have failed")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-origin upgrade, got %v", resp)
	}
	resp.Body.Close()

	if got := g.Registry().ConnCount(1); got != 0 {
		t.Fatalf("cross-origin connection must not be registered, got %d", got)
	}
}

func TestGateway_AIMessageRoundTrip(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"sid-a": 1, "sid-b": 2})

	a := dial(t, srv, "sid-a")
	b := dial(t, srv, "sid-b")
	waitForConns(t, g, 1, 1)
	waitForConns(t, g, 2, 1)

	if err := a.WriteJSON(map[string]any{"type": "ai_message", "content": "I need help with gst"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := readFrame(t, a)
	if f.Type != "ai_response" {
		t.Fatalf("expected ai_response, got %q", f.Type)
	}
	if !strings.Contains(f.Content, "GST") {
		t.Fatalf("expected GST guidance, got %q", f.Content)
	}

	// nobody else hears the assistant
	expectSilence(t, b)
}

func TestGateway_PeerMessageDelivered(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"sid-a": 1, "sid-b": 2, "sid-c": 3})

	a := dial(t, srv, "sid-a")
	b := dial(t, srv, "sid-b")
	c := dial(t, srv, "sid-c")
	waitForConns(t, g, 1, 1)
	waitForConns(t, g, 2, 1)
	waitForConns(t, g, 3, 1)

	if err := a.WriteJSON(map[string]any{"type": "chat_message", "content": "hello", "toUserId": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := readFrame(t, b)
	if f.Type != "chat_message" || f.Content != "hello" || f.FromUserID != 1 {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if _, err := time.Parse(time.RFC3339, f.Timestamp); err != nil {
		t.Fatalf("bad timestamp %q: %v", f.Timestamp, err)
	}

	expectSilence(t, c)
	expectSilence(t, a)
}

func TestGateway_PeerMessageToOfflineUserIsNoOp(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"sid-a": 1})

	a := dial(t, srv, "sid-a")
	waitForConns(t, g, 1, 1)

	if err := a.WriteJSON(map[string]any{"type": "chat_message", "content": "anyone?", "toUserId": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	expectSilence(t, a)
	if got := g.Registry().ConnCount(3); got != 0 {
		t.Fatalf("offline delivery must not mutate registry, got %d", got)
	}
}

func TestGateway_MalformedFrameKeepsConnectionOpen(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"sid-a": 1})

	a := dial(t, srv, "sid-a")
	waitForConns(t, g, 1, 1)

	// unparseable payload, then a frame with a missing field, then an
	// unknown type: all dropped, none fatal
	if err := a.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.WriteJSON(map[string]any{"type": "ai_message", "content": "   "}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.WriteJSON(map[string]any{"type": "mystery"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// the connection still works
	if err := a.WriteJSON(map[string]any{"type": "ai_message", "content": "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readFrame(t, a)
	if f.Type != "ai_response" || f.Content == "" {
		t.Fatalf("connection should still serve frames, got %+v", f)
	}
}

func TestGateway_CloseDeregistersOnlyThatConnection(t *testing.T) {
	srv, g := newTestServer(t, stubSessions{"sid-a": 1, "sid-a2": 1})

	a1 := dial(t, srv, "sid-a")
	_ = dial(t, srv, "sid-a2")
	waitForConns(t, g, 1, 2)

	a1.Close()
	waitForConns(t, g, 1, 1)
}
