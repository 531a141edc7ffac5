package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/prompt-chat/backend/internal/model/chat"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

type fakeSender struct {
	mu       sync.Mutex
	reply    string
	err      error
	sessions []string
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakeSender) SendChat(_ context.Context, message, sessionID string) (string, error) {
	f.mu.Lock()
	f.sessions = append(f.sessions, sessionID)
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.err
}

func TestConversationSendRecordsExchange(t *testing.T) {
	sender := &fakeSender{reply: "**Prompt**\n1. one"}
	conv := NewConversation(sender, nil)

	ex, err := conv.Send(context.Background(), "  give me prompts  ")
	require.NoError(t, err)

	assert.False(t, ex.Failed())
	assert.Equal(t, "give me prompts", ex.User.Content)
	assert.Equal(t, chat.RoleUser, ex.User.Role)
	assert.Equal(t, chat.RoleAssistant, ex.Assistant.Role)
	assert.Equal(t, "**Prompt**\n1. one", ex.Assistant.Content)
	assert.Contains(t, ex.HTML, "<strong>Prompt</strong>")
	assert.Contains(t, ex.HTML, "prompts-container")
	assert.Equal(t, []string{conv.SessionID()}, sender.sessions)
	assert.Equal(t, 2, conv.Store().Len())
	assert.False(t, conv.Loading())
}

func TestConversationSendRejectsEmpty(t *testing.T) {
	conv := NewConversation(&fakeSender{}, nil)

	_, err := conv.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, conv.Store().Len())
}

func TestConversationHTTPErrorBecomesAssistantMessage(t *testing.T) {
	sender := &fakeSender{err: &webhook.HTTPError{StatusCode: 500, Status: "500 Internal Server Error"}}
	conv := NewConversation(sender, nil)

	ex, err := conv.Send(context.Background(), "hi")
	require.NoError(t, err)

	assert.True(t, ex.Failed())
	assert.Equal(t, chat.RoleAssistant, ex.Assistant.Role)
	assert.Contains(t, ex.Assistant.Content, "500")
	assert.Equal(t, "Sorry, I encountered an error: HTTP 500: Internal Server Error. Please try again in a moment.", ex.Assistant.Content)
	assert.False(t, conv.Loading())
}

func TestConversationNetworkErrorHasDistinctWording(t *testing.T) {
	httpConv := NewConversation(&fakeSender{err: &webhook.HTTPError{StatusCode: 500, Status: "500 Internal Server Error"}}, nil)
	netConv := NewConversation(&fakeSender{err: &webhook.NetworkError{Err: errors.New("dial tcp: refused")}}, nil)

	httpEx, err := httpConv.Send(context.Background(), "hi")
	require.NoError(t, err)
	netEx, err := netConv.Send(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, chat.RoleAssistant, netEx.Assistant.Role)
	assert.Contains(t, netEx.Assistant.Content, "Network error")
	assert.NotContains(t, netEx.Assistant.Content, "..")
	assert.NotEqual(t, httpEx.Assistant.Content, netEx.Assistant.Content)
	assert.False(t, netConv.Loading())
}

func TestConversationRejectsConcurrentSend(t *testing.T) {
	sender := &fakeSender{reply: "ok", block: make(chan struct{}), entered: make(chan struct{})}
	conv := NewConversation(sender, nil)

	done := make(chan error, 1)
	go func() {
		_, err := conv.Send(context.Background(), "first")
		done <- err
	}()

	<-sender.entered
	assert.True(t, conv.Loading())

	_, err := conv.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(sender.block)
	require.NoError(t, <-done)
	assert.False(t, conv.Loading())
	assert.Equal(t, 2, conv.Store().Len())
}

func TestConversationExportUnaffectedByNewSession(t *testing.T) {
	conv := NewConversation(&fakeSender{reply: "r"}, nil)
	_, err := conv.Send(context.Background(), "q")
	require.NoError(t, err)

	snap := conv.ExportSnapshot()
	oldID := conv.SessionID()
	conv.NewSession()

	assert.NotEqual(t, oldID, conv.SessionID())
	assert.Zero(t, conv.Store().Len())
	assert.Equal(t, oldID, snap.SessionID)
	assert.Len(t, snap.Messages, 2)
	assert.Equal(t, "prompt-generator-history-"+conv.SessionID()+".json", conv.ExportFileName())
}

func TestRenderEscapesUserContent(t *testing.T) {
	user := chat.Message{Role: chat.RoleUser, Content: "<b>**x**</b>"}
	assistant := chat.Message{Role: chat.RoleAssistant, Content: "**x**"}

	assert.Equal(t, "&lt;b&gt;**x**&lt;/b&gt;", Render(user))
	assert.Equal(t, "<strong>x</strong>", Render(assistant))
}
