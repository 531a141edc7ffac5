package stream

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	chatService "github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
	"github.com/zhouzirui/prompt-chat/backend/pkg/utils"
)

// Handler delivers webhook replies via Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Role      string `json:"role,omitempty"`
	Content   string `json:"content,omitempty"`
	HTML      string `json:"html,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	conv, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, conv, userMessage); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("stream request failed")
	}
}

// HandleStreamRequest sends one message and streams the exchange as events:
// start, user, message, end. Rejections are reported as a single error event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, conv *chatService.Conversation, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return errors.New("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	sessionID := conv.SessionID()
	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	exchange, err := conv.Send(ctx, userMessage)
	if err != nil {
		utils.SendSSEChunk(w, flusher, StreamResponse{
			Event:     "error",
			SessionID: sessionID,
			Error:     err.Error(),
		})
		return err
	}

	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "user",
		Role:      string(exchange.User.Role),
		SessionID: exchange.SessionID,
		Content:   exchange.User.Content,
		HTML:      chatService.Render(exchange.User),
	})

	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "message",
		Role:      string(exchange.Assistant.Role),
		SessionID: exchange.SessionID,
		Content:   exchange.Assistant.Content,
		HTML:      exchange.HTML,
		Failed:    exchange.Failed(),
	})

	utils.SendSSEChunk(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: exchange.SessionID,
		Finished:  true,
	})

	log.Debug().Str("session_id", exchange.SessionID).Bool("failed", exchange.Failed()).Msg("stream completed")
	return nil
}
