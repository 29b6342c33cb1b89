package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"maxwell/internal/agents"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// Server exposes the coaching front over plain JSON HTTP
type Server struct {
	front       *agents.Front
	turnTimeout time.Duration
	log         *logger.Logger
}

// NewServer creates the HTTP surface for the conversation front
func NewServer(front *agents.Front, turnTimeout time.Duration) *Server {
	if turnTimeout <= 0 {
		turnTimeout = 2 * time.Minute
	}
	return &Server{
		front:       front,
		turnTimeout: turnTimeout,
		log:         logger.Get().With("component", "httpapi"),
	}
}

// Routes mounts the API handlers on a fresh mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/turns", s.handleTurn)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

type turnPayload struct {
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id"`
	ManuscriptID string `json:"manuscript_id,omitempty"`
	ChapterID    string `json:"chapter_id,omitempty"`
	Message      string `json:"message"`
	SelectedText string `json:"selected_text,omitempty"`
	ContextText  string `json:"context_text,omitempty"`
	Tone         string `json:"tone,omitempty"`
}

type turnResponse struct {
	Narrative   string                        `json:"narrative"`
	Intent      string                        `json:"intent,omitempty"`
	Agents      []string                      `json:"agents,omitempty"`
	Conflicts   []agents.Conflict             `json:"conflicts,omitempty"`
	Health      *agents.StoryHealthAssessment `json:"health,omitempty"`
	TotalTokens int                           `json:"total_tokens"`
	TotalCost   string                        `json:"total_cost"`
	LatencyMs   int64                         `json:"latency_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var payload turnPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.turnTimeout)
	defer cancel()

	result, err := s.front.HandleMessage(ctx, req)
	if err != nil {
		s.log.ErrorWithContext(ctx, err, map[string]string{"session_id": payload.SessionID})
		if errors.Is(err, errors.ErrTurnCancelled) {
			writeError(w, http.StatusGatewayTimeout, "turn cancelled")
			return
		}
		writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	resp := turnResponse{
		Narrative:   result.Narrative,
		Conflicts:   result.Conflicts,
		Health:      result.Health,
		TotalTokens: result.TotalTokens,
		TotalCost:   result.TotalCost.String(),
		LatencyMs:   result.LatencyMs,
	}
	if result.Decision != nil {
		resp.Intent = string(result.Decision.Intent)
		for _, kind := range result.Decision.Agents {
			resp.Agents = append(resp.Agents, string(kind))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (p turnPayload) toRequest() (agents.TurnRequest, error) {
	if p.SessionID == "" {
		return agents.TurnRequest{}, errors.Wrap(errors.ErrInvalidInput, "session_id is required")
	}
	if p.Message == "" {
		return agents.TurnRequest{}, errors.Wrap(errors.ErrInvalidInput, "message is required")
	}

	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return agents.TurnRequest{}, errors.Wrap(errors.ErrInvalidInput, "user_id must be a UUID")
	}

	req := agents.TurnRequest{
		SessionID:    p.SessionID,
		UserID:       userID,
		Message:      p.Message,
		SelectedText: p.SelectedText,
		ContextText:  p.ContextText,
		Tone:         agents.Tone(p.Tone),
	}
	if p.ManuscriptID != "" {
		if req.ManuscriptID, err = uuid.Parse(p.ManuscriptID); err != nil {
			return agents.TurnRequest{}, errors.Wrap(errors.ErrInvalidInput, "manuscript_id must be a UUID")
		}
	}
	if p.ChapterID != "" {
		if req.ChapterID, err = uuid.Parse(p.ChapterID); err != nil {
			return agents.TurnRequest{}, errors.Wrap(errors.ErrInvalidInput, "chapter_id must be a UUID")
		}
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
