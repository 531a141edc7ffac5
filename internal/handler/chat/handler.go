package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/prompt-chat/backend/internal/analysis/markup"
	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
	"github.com/zhouzirui/prompt-chat/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetSession)
		sr.Post("/messages", h.handleSendMessage)
		sr.Post("/reset", h.handleResetSession)
		sr.Get("/export", h.handleExport)
	})
	r.Post("/format", h.handleFormat)
}

// RenderedMessage 历史消息及其在页面中显示的HTML
type RenderedMessage struct {
	chat.Message
	HTML string `json:"html"`
}

type sessionResponse struct {
	Session  chat.Session      `json:"session"`
	Messages []RenderedMessage `json:"messages"`
	Loading  bool              `json:"loading"`
}

type sendResponse struct {
	SessionID string          `json:"sessionId"`
	User      RenderedMessage `json:"user"`
	Assistant RenderedMessage `json:"assistant"`
	Failed    bool            `json:"failed"`
}

func render(messages []chat.Message) []RenderedMessage {
	out := make([]RenderedMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, RenderedMessage{Message: msg, HTML: chatService.Render(msg)})
	}
	return out
}

func describe(conv *chatService.Conversation) sessionResponse {
	store := conv.Store()
	return sessionResponse{
		Session:  store.Session(),
		Messages: render(store.Messages()),
		Loading:  conv.Loading(),
	}
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	conv := h.chatSvc.CreateSession(r.Context())
	utils.RespondJSON(w, http.StatusCreated, describe(conv))
}

// handleGetSession 查询会话与历史
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, describe(conv))
}

// handleSendMessage 发送消息并等待 webhook 回复
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		ChatInput string `json:"chatInput"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exchange, err := conv.Send(r.Context(), payload.ChatInput)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, sendResponse{
		SessionID: exchange.SessionID,
		User:      RenderedMessage{Message: exchange.User, HTML: chatService.Render(exchange.User)},
		Assistant: RenderedMessage{Message: exchange.Assistant, HTML: exchange.HTML},
		Failed:    exchange.Failed(),
	})
}

// handleResetSession 开启新会话
func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.ResetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"session": session})
}

// handleExport 导出会话历史
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snapshot := conv.ExportSnapshot()
	log.Info().Str("session_id", snapshot.SessionID).Int("messages", len(snapshot.Messages)).Msg("chat history exported")
	utils.RespondDownload(w, chat.ExportFileName(snapshot.SessionID), snapshot)
}

// handleFormat 预览格式化结果
func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"html": markup.Format(payload.Text)})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.Conversation, bool) {
	conv, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return nil, false
	}
	return conv, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
