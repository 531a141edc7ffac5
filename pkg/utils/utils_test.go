package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "session not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"session not found"}`, rec.Body.String())
}

func TestRespondDownloadSetsAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDownload(rec, "history.json", map[string]int{"a": 1})

	assert.Equal(t, `attachment; filename="history.json"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "{\n  \"a\": 1\n}", rec.Body.String())
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	SendSSEEvent(rec, rec, "message", map[string]string{"content": "hi"})
	SendSSEChunk(rec, rec, map[string]bool{"finished": true})

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: message\ndata: {\"content\":\"hi\"}\n\ndata: {\"finished\":true}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
