package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatService "github.com/zhouzirui/prompt-chat/backend/internal/service/chat"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

func TestRouterEndToEnd(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			ChatInput string `json:"chatInput"`
			SessionID string `json:"sessionId"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"output": "echo: " + in.ChatInput + " @ " + in.SessionID})
	}))
	defer hook.Close()

	chatSvc := chatService.NewService(webhook.NewClient(hook.URL))
	srv := httptest.NewServer(NewRouter(chatSvc, []string{"*"}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/sessions/"+created.Session.ID+"/messages", "application/json",
		strings.NewReader(`{"chatInput":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sent struct {
		Assistant struct {
			Content string `json:"content"`
		} `json:"assistant"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))
	assert.Equal(t, "echo: hi @ "+created.Session.ID, sent.Assistant.Content)

	conv, err := chatSvc.GetSession(context.Background(), created.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.Store().Len())
}

func TestRouterHealthAndWidget(t *testing.T) {
	h := NewRouter(chatService.NewService(webhook.NewClient("")), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"writing"`)
}
