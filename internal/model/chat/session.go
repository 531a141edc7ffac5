package chat

import "time"

// Session correlates a sequence of exchanges with the remote webhook.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is a detached copy of a conversation suitable for export.
type Snapshot struct {
	SessionID  string    `json:"sessionId"`
	Messages   []Message `json:"messages"`
	ExportedAt time.Time `json:"exportedAt"`
}

// ExportFileName returns the download name used for a session export.
func ExportFileName(sessionID string) string {
	return "prompt-generator-history-" + sessionID + ".json"
}
