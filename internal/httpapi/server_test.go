package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maxwell/internal/agents"
	"maxwell/internal/domain/dialogue"
)

type fixedCompleter struct {
	text string
}

func (f *fixedCompleter) Run(ctx context.Context, req agents.RunRequest) (*agents.Completion, error) {
	return &agents.Completion{
		Text:  f.text,
		Usage: agents.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func newTestServer(text string) *Server {
	completer := &fixedCompleter{text: text}
	front := agents.NewFront(
		agents.NewRouter(),
		agents.NewOrchestrator(agents.NewAgentSet(completer), nil, nil),
		agents.NewConflictReasoner(),
		agents.NewSynthesizer(completer),
		completer,
		nil,
		dialogue.NewMemoryStore(),
		nil,
		2000,
		0,
	)
	return NewServer(front, time.Minute)
}

func postTurn(t *testing.T, server *Server, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/turns", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleTurn_Conversational(t *testing.T) {
	server := newTestServer("Happy to chat about your draft.")

	rec := postTurn(t, server, map[string]interface{}{
		"session_id": "sess-1",
		"user_id":    uuid.NewString(),
		"message":    "good morning",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Happy to chat about your draft.", resp.Narrative)
	assert.Empty(t, resp.Intent, "conversational turns carry no intent")
}

func TestHandleTurn_Pipeline(t *testing.T) {
	server := newTestServer(`{"recommendations": [{"text": "Vary sentence length.", "severity": "medium"}]}`)

	rec := postTurn(t, server, map[string]interface{}{
		"session_id":    "sess-1",
		"user_id":       uuid.NewString(),
		"message":       "Give me a full review of this scene",
		"selected_text": "Sarah walked into the rain without her coat.",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(agents.IntentAnalysis), resp.Intent)
	assert.Len(t, resp.Agents, 4)
	assert.NotNil(t, resp.Health)
	assert.NotEmpty(t, resp.Narrative)
}

func TestHandleTurn_Validation(t *testing.T) {
	server := newTestServer("ok")

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing session", map[string]interface{}{"user_id": uuid.NewString(), "message": "hi"}},
		{"missing message", map[string]interface{}{"session_id": "s", "user_id": uuid.NewString()}},
		{"bad user id", map[string]interface{}{"session_id": "s", "user_id": "nope", "message": "hi"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postTurn(t, server, tc.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleTurn_MethodNotAllowed(t *testing.T) {
	server := newTestServer("ok")

	req := httptest.NewRequest(http.MethodGet, "/v1/turns", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	server := newTestServer("ok")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
