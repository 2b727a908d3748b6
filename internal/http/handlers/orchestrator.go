// Package handlers holds the HTTP endpoints of the assistant API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/orchestrator"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/store"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/web/sse"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// OrchestratorHandler exposes the chat workflow over HTTP: a streaming
// SSE endpoint, a single-shot JSON endpoint, and history retrieval.
type OrchestratorHandler struct {
	workflow *orchestrator.Workflow
	history  store.ConversationStore
	logger   *logging.Logger
}

// NewOrchestratorHandler creates the handler. history may be nil;
// the history endpoint then always returns an empty list.
func NewOrchestratorHandler(workflow *orchestrator.Workflow, history store.ConversationStore, logger *logging.Logger) *OrchestratorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OrchestratorHandler{
		workflow: workflow,
		history:  history,
		logger:   logger.Component("orchestrator_handler"),
	}
}

// Chat handles POST /orchestrator/chat: runs one turn and streams the
// response as SSE events ({type: token|done|error, content, metadata}).
func (h *OrchestratorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTurnRequest(w, r)
	if !ok {
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	err = h.workflow.RunStream(ctx, req, func(ev orchestrator.Event) error {
		return writer.WriteJSON(ctx, ev)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Info("client disconnected mid-stream", "conversation_id", req.ConversationID)
			return
		}
		h.logger.Error("stream failed", "conversation_id", req.ConversationID, "error", err)
		_ = writer.WriteJSON(ctx, orchestrator.Event{
			Type:    "error",
			Content: "The stream was interrupted. Please try again.",
		})
	}
}

// Message handles POST /orchestrator/message: runs one turn and
// returns the aggregated response as JSON.
func (h *OrchestratorHandler) Message(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTurnRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.workflow.Run(r.Context(), req)
	if err != nil {
		h.logger.Error("turn failed", "conversation_id", req.ConversationID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// historyResponse wraps the messages of one conversation.
type historyResponse struct {
	ConversationID string               `json:"conversation_id"`
	Messages       []historyMessageJSON `json:"messages"`
}

type historyMessageJSON struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// History handles GET /conversations/{conversationID}/history.
func (h *OrchestratorHandler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		http.Error(w, "conversation id is required", http.StatusBadRequest)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	resp := historyResponse{ConversationID: conversationID, Messages: []historyMessageJSON{}}
	if h.history != nil {
		records, err := h.history.GetHistory(r.Context(), conversationID, limit)
		if err != nil {
			h.logger.Error("history fetch failed", "conversation_id", conversationID, "error", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		for _, rec := range records {
			resp.Messages = append(resp.Messages, historyMessageJSON{
				Role:      rec.Role,
				Content:   rec.Content,
				Timestamp: rec.Timestamp,
				Metadata:  rec.Metadata,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /health.
func (h *OrchestratorHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OrchestratorHandler) decodeTurnRequest(w http.ResponseWriter, r *http.Request) (orchestrator.TurnRequest, bool) {
	var req orchestrator.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return orchestrator.TurnRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
