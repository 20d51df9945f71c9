package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avavoice/ava-server/internal/assistant"
	"github.com/avavoice/ava-server/internal/conversation"
	"github.com/avavoice/ava-server/internal/retry"
	"github.com/avavoice/ava-server/internal/store"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

func newTestService(t *testing.T, repo store.Repository, reply string) *assistant.Service {
	t.Helper()
	gen := conversation.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		return reply, nil
	})
	policy := retry.Policy{Sleep: func(context.Context, time.Duration) error { return nil }}
	sessions := conversation.NewSessionManager(func() *conversation.Manager {
		return conversation.New(gen, "You are Ava.", conversation.WithRetryPolicy(policy))
	})
	return assistant.New(sessions, nil, nil, repo)
}

func newChatServer(t *testing.T, repo store.Repository, reply string) *httptest.Server {
	t.Helper()
	h := NewAssistantHandler(NewHandler(repo, testUserID), newTestService(t, repo, reply))
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func putJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response, data interface{}) Envelope {
	t.Helper()
	defer resp.Body.Close()
	raw := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode envelope data: %v", err)
		}
	}
	return Envelope{Success: raw.Success, Message: raw.Message, Error: raw.Error}
}

func TestChatReturnsReply(t *testing.T) {
	repo := newFakeRepo()
	srv := newChatServer(t, repo, "Hi, I'm Ava!")

	resp := postJSON(t, srv.URL+"/api/chat", map[string]interface{}{
		"text":       "hello",
		"session_id": "s1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body chatResponse
	env := decodeEnvelope(t, resp, &body)
	if !env.Success {
		t.Fatalf("success = false, error = %q", env.Error)
	}
	if body.Reply != "Hi, I'm Ava!" {
		t.Errorf("reply = %q", body.Reply)
	}
	if body.SessionID != "s1" {
		t.Errorf("session_id = %q, want s1", body.SessionID)
	}
	if got := repo.messageCount("s1"); got != 2 {
		t.Errorf("persisted %d messages, want 2", got)
	}
}

func TestChatGeneratesSessionID(t *testing.T) {
	srv := newChatServer(t, newFakeRepo(), "ok")

	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"text": "hello"})
	var body chatResponse
	decodeEnvelope(t, resp, &body)
	if body.SessionID == "" {
		t.Error("expected a generated session_id")
	}
}

func TestChatEmptyInputAsksForClarification(t *testing.T) {
	repo := newFakeRepo()
	srv := newChatServer(t, repo, "never used")

	resp := postJSON(t, srv.URL+"/api/chat", map[string]interface{}{
		"text":       "   ",
		"session_id": "s1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body chatResponse
	decodeEnvelope(t, resp, &body)
	if body.Reply != conversation.ClarificationReply {
		t.Errorf("reply = %q, want clarification", body.Reply)
	}
	if got := repo.messageCount("s1"); got != 0 {
		t.Errorf("persisted %d messages, want 0", got)
	}
}

func TestChatRejectsInvalidBody(t *testing.T) {
	srv := newChatServer(t, newFakeRepo(), "ok")

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader([]byte("{")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestResetClearsConversation(t *testing.T) {
	repo := newFakeRepo()
	srv := newChatServer(t, repo, "ok")

	postJSON(t, srv.URL+"/api/chat", map[string]interface{}{"text": "hello", "session_id": "s1"}).Body.Close()

	resp := postJSON(t, srv.URL+"/api/conversation/reset", map[string]string{"session_id": "s1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	sumResp, err := http.Get(srv.URL + "/api/conversation/summary?session_id=s1")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	decodeEnvelope(t, sumResp, &body)
	if body["summary"] != "No conversation yet." {
		t.Errorf("summary = %q", body["summary"])
	}
}

func TestSummaryCountsTurns(t *testing.T) {
	srv := newChatServer(t, newFakeRepo(), "ok")

	for i := 0; i < 2; i++ {
		postJSON(t, srv.URL+"/api/chat", map[string]interface{}{"text": "hello", "session_id": "s1"}).Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/conversation/summary?session_id=s1")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	decodeEnvelope(t, resp, &body)
	want := "Conversation: 2 user messages, 2 AI responses"
	if body["summary"] != want {
		t.Errorf("summary = %q, want %q", body["summary"], want)
	}
}
