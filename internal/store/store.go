// Package store persists conversations and exposes the narrow storage
// boundary the orchestrator depends on. The workflow treats every
// operation here as best-effort: failures are logged by the caller and
// never abort a turn.
package store

import (
	"context"
	"time"
)

// MessageRecord is one persisted conversation message.
type MessageRecord struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ConversationStore is the document-store boundary for conversation
// history. Appends are append-only; the engine never mutates or
// deletes past messages.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, conversationID, userID string, metadata map[string]any) error
	AppendMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) error
	GetHistory(ctx context.Context, conversationID string, limit int) ([]MessageRecord, error)
}

// FileMetadataStore loads extraction metadata previously stored for an
// uploaded file (e.g. the AWB read off a waybill photo by the vision
// pipeline).
type FileMetadataStore interface {
	GetFileMetadata(ctx context.Context, conversationID, fileID string) (map[string]any, error)
}
