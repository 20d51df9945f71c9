package chat

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/avavoice/ava-server/internal/assistant"
	"github.com/avavoice/ava-server/internal/conversation"
	"github.com/avavoice/ava-server/internal/retry"
)

func newChatService(reply string) *assistant.Service {
	gen := conversation.GeneratorFunc(func(context.Context, string) (string, error) {
		return reply, nil
	})
	policy := retry.Policy{Sleep: func(context.Context, time.Duration) error { return nil }}
	sessions := conversation.NewSessionManager(func() *conversation.Manager {
		return conversation.New(gen, "You are Ava.", conversation.WithRetryPolicy(policy))
	})
	return assistant.New(sessions, nil, nil, nil)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close(websocket.StatusNormalClosure, "done") })
	return ws
}

func readReply(t *testing.T, ws *websocket.Conn) wsReply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := ws.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var reply wsReply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return reply
}

func send(t *testing.T, ws *websocket.Conn, msg wsMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocketChatRoundTrip(t *testing.T) {
	h := NewWebSocketHandler(newChatService("Hi there!"), "user-1", "", true)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ws := dial(t, srv)

	session := readReply(t, ws)
	if session.Type != "session" || session.SessionID == "" {
		t.Fatalf("first frame = %+v, want session frame", session)
	}

	send(t, ws, wsMessage{Type: "message", Content: "hello"})
	reply := readReply(t, ws)
	if reply.Type != "reply" || reply.Content != "Hi there!" {
		t.Errorf("reply = %+v", reply)
	}
	if reply.SessionID != session.SessionID {
		t.Errorf("reply session = %q, want %q", reply.SessionID, session.SessionID)
	}
}

func TestWebSocketSummaryAndReset(t *testing.T) {
	h := NewWebSocketHandler(newChatService("ok"), "user-1", "", true)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ws := dial(t, srv)
	readReply(t, ws) // session frame

	send(t, ws, wsMessage{Type: "message", Content: "hello"})
	readReply(t, ws)

	send(t, ws, wsMessage{Type: "summary"})
	summary := readReply(t, ws)
	if summary.Content != "Conversation: 1 user messages, 1 AI responses" {
		t.Errorf("summary = %q", summary.Content)
	}

	send(t, ws, wsMessage{Type: "reset"})
	if ack := readReply(t, ws); ack.Type != "reset" {
		t.Errorf("reset ack = %+v", ack)
	}

	send(t, ws, wsMessage{Type: "summary"})
	if after := readReply(t, ws); after.Content != "No conversation yet." {
		t.Errorf("summary after reset = %q", after.Content)
	}
}

func TestWebSocketEmptyMessageAsksForClarification(t *testing.T) {
	h := NewWebSocketHandler(newChatService("unused"), "user-1", "", true)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ws := dial(t, srv)
	readReply(t, ws)

	send(t, ws, wsMessage{Type: "message", Content: "   "})
	reply := readReply(t, ws)
	if reply.Content != conversation.ClarificationReply {
		t.Errorf("reply = %q, want clarification", reply.Content)
	}
}

func TestWebSocketPing(t *testing.T) {
	h := NewWebSocketHandler(newChatService("ok"), "user-1", "", true)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ws := dial(t, srv)
	readReply(t, ws)

	send(t, ws, wsMessage{Type: "ping"})
	if pong := readReply(t, ws); pong.Type != "pong" {
		t.Errorf("pong = %+v", pong)
	}
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	h := NewWebSocketHandler(newChatService("ok"), "user-1", "https://app.example.com", false)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: map[string][]string{"Origin": {"https://evil.example.com"}},
	})
	if err == nil {
		t.Fatal("expected dial to fail for rejected origin")
	}
	if resp != nil && resp.StatusCode != 403 {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}
