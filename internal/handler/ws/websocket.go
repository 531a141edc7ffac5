package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	chatservice "github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultPingInterval = 54 * time.Second
)

// WebSocketHandler WebSocket聊天处理器
type WebSocketHandler struct {
	chatSvc      *chatservice.Service
	upgrader     websocket.Upgrader
	readTimeout  time.Duration
	pingInterval time.Duration
}

// Option 配置WebSocket处理器
type Option func(*WebSocketHandler)

// WithKeepalive 设置读超时与ping间隔，ping间隔需小于读超时
func WithKeepalive(readTimeout, pingInterval time.Duration) Option {
	return func(h *WebSocketHandler) {
		if readTimeout > 0 && pingInterval > 0 && pingInterval < readTimeout {
			h.readTimeout = readTimeout
			h.pingInterval = pingInterval
		}
	}
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatservice.Service, opts ...Option) *WebSocketHandler {
	h := &WebSocketHandler{
		chatSvc:      chatSvc,
		readTimeout:  defaultReadTimeout,
		pingInterval: defaultPingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connectionState 单个连接的状态；gorilla连接只允许一个并发写者，writeMu串行化所有数据帧写入
type connectionState struct {
	conn    *websocket.Conn
	conv    *chatservice.Conversation
	writeMu sync.Mutex
	sends   sync.WaitGroup
}

func (s *connectionState) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conv, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[websocket] upgrade failed")
		return
	}
	defer conn.Close()
	state := &connectionState{conn: conn, conv: conv}

	log.Info().Str("session_id", sessionID).Msg("[websocket] new connection")

	ctx, cancel := context.WithCancel(r.Context())
	// 先取消进行中的webhook调用，等待其写完再关闭连接
	defer state.sends.Wait()
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.sendInfo(state, sessionID, map[string]any{
		"type":    "connected",
		"loading": conv.Loading(),
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("[websocket] read error")
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(h.readTimeout))

		if msg.SessionID != "" && msg.SessionID != state.conv.SessionID() {
			h.sendError(state, "session mismatch")
			continue
		}

		h.handleMessage(ctx, state, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		// webhook调用没有时长上限，放到独立goroutine中，读循环继续处理pong
		state.sends.Add(1)
		go func(raw json.RawMessage) {
			defer state.sends.Done()
			h.handleTextMessage(ctx, state, raw)
		}(msg.Data)
	case "reset":
		h.handleReset(ctx, state)
	case "export":
		h.sendInfo(state, state.conv.SessionID(), map[string]any{
			"type":     "export",
			"fileName": state.conv.ExportFileName(),
			"snapshot": state.conv.ExportSnapshot(),
		})
	default:
		h.sendError(state, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, state *connectionState, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(state, "invalid text payload")
		return
	}

	sessionID := state.conv.SessionID()
	h.sendInfo(state, sessionID, map[string]any{"type": "loading", "loading": true})

	exchange, err := state.conv.Send(ctx, text.Text)
	if err != nil {
		h.sendError(state, err.Error())
		h.sendInfo(state, sessionID, map[string]any{"type": "loading", "loading": state.conv.Loading()})
		return
	}

	h.sendInfo(state, exchange.SessionID, map[string]any{
		"type": "user",
		"text": exchange.User.Content,
		"html": chatservice.Render(exchange.User),
	})
	h.sendInfo(state, exchange.SessionID, map[string]any{
		"type":    "assistant",
		"text":    exchange.Assistant.Content,
		"html":    exchange.HTML,
		"failed":  exchange.Failed(),
		"isFinal": true,
	})
	h.sendInfo(state, exchange.SessionID, map[string]any{"type": "loading", "loading": false})
}

func (h *WebSocketHandler) handleReset(ctx context.Context, state *connectionState) {
	session, err := h.chatSvc.ResetSession(ctx, state.conv.SessionID())
	if err != nil {
		h.sendError(state, err.Error())
		return
	}

	log.Info().Str("session_id", session.ID).Msg("[websocket] session reset")
	h.sendInfo(state, session.ID, map[string]any{
		"type":    "reset",
		"session": session,
	})
}

func (h *WebSocketHandler) sendInfo(state *connectionState, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := state.writeJSON(msg); err != nil {
		log.Warn().Err(err).Msg("[websocket] write info failed")
	}
}

func (h *WebSocketHandler) sendError(state *connectionState, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := state.writeJSON(msg); err != nil {
		log.Warn().Err(err).Msg("[websocket] write error failed")
	}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
