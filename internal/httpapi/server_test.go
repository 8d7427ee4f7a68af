package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aurora-labs/aurora/internal/auth"
	"github.com/aurora-labs/aurora/internal/config"
	"github.com/aurora-labs/aurora/internal/observability"
	"github.com/aurora-labs/aurora/internal/protocol"
	"github.com/aurora-labs/aurora/internal/session"
)

// echoOrchestrator answers every chat message with a fixed response so the
// websocket plumbing can be tested without a real pipeline.
type echoOrchestrator struct {
	reply string
}

func (o *echoOrchestrator) RunConnection(ctx context.Context, _ *session.Session, inbound <-chan any, outbound chan<- any) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-inbound:
			if !ok {
				return nil
			}
			msg, ok := raw.(protocol.ChatMessage)
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case outbound <- protocol.ChatResponse{
				Type:    protocol.TypeChatResponse,
				Content: o.reply,
				Chat:    msg.Chat,
			}:
			}
		}
	}
}

func newTestServer(t *testing.T, namespace string) (*Server, *auth.Verifier, *session.Manager) {
	t.Helper()
	verifier, err := auth.NewVerifier("test-secret")
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	sessions := session.NewManager(time.Minute)
	srv := New(
		config.Config{},
		sessions,
		&echoOrchestrator{reply: "echo reply"},
		verifier,
		observability.NewMetrics(namespace),
	)
	return srv, verifier, sessions
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, "test_http_healthz")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyzReportsActiveSessions(t *testing.T) {
	srv, _, sessions := newTestServer(t, "test_http_readyz")
	sessions.Create("user-1")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["active_sessions"] != float64(1) {
		t.Fatalf("active_sessions = %v, want 1", body["active_sessions"])
	}
}

func TestWSRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t, "test_http_ws_no_token")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWSRejectsInvalidToken(t *testing.T) {
	srv, _, _ := newTestServer(t, "test_http_ws_bad_token")
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWSChatRoundTrip(t *testing.T) {
	srv, verifier, sessions := newTestServer(t, "test_http_ws_roundtrip")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	token, err := verifier.Sign("user-1", time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	if sessions.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", sessions.ActiveCount())
	}

	err = conn.WriteJSON(protocol.ChatMessage{
		Type:    protocol.TypeChatMessage,
		Chat:    "chat-1",
		Content: "hello",
	})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got protocol.ChatResponse
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Type != protocol.TypeChatResponse || got.Chat != "chat-1" || got.Content != "echo reply" {
		t.Fatalf("response = %+v", got)
	}

	// Closing the client connection must end the session server-side.
	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for sessions.ActiveCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not ended after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWSMalformedMessageGetsErrorEvent(t *testing.T) {
	srv, verifier, _ := newTestServer(t, "test_http_ws_malformed")
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	token, err := verifier.Sign("user-1", time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	err = conn.WriteJSON(map[string]any{"type": "presence"})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got protocol.ErrorEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Type != protocol.TypeErrorEvent || got.Code != "invalid_client_message" {
		t.Fatalf("error event = %+v", got)
	}
}
