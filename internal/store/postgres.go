package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists conversations and messages to PostgreSQL for
// long-term history.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new conversation store. A nil database
// handle yields a nil store, and all methods on a nil store are no-ops
// so persistence can be disabled outright.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		return nil
	}
	return &PostgresStore{db: db}
}

// EnsureConversation creates the conversation record if it does not
// exist, or bumps updated_at when it does.
func (s *PostgresStore) EnsureConversation(ctx context.Context, conversationID, userID string, metadata map[string]any) error {
	if s == nil || s.db == nil {
		return nil
	}

	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE conversation_id = $1`,
		conversationID,
	).Scan(&existingID)

	if err == nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			time.Now(), existingID,
		)
		return err
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("store: failed to check existing conversation: %w", err)
	}

	metaJSON, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (
			id, conversation_id, user_id, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), conversationID, userID, metaJSON, now, now)

	if err != nil {
		// Another request may have created it concurrently.
		if strings.Contains(err.Error(), "duplicate key") {
			return s.EnsureConversation(ctx, conversationID, userID, metadata)
		}
		return fmt.Errorf("store: failed to create conversation: %w", err)
	}
	return nil
}

// AppendMessage inserts a message and updates the conversation counters.
func (s *PostgresStore) AppendMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) error {
	if s == nil || s.db == nil {
		return nil
	}

	if err := s.EnsureConversation(ctx, conversationID, "", nil); err != nil {
		return err
	}

	metaJSON, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (
			id, conversation_id, role, content, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), conversationID, role, content, metaJSON, now)

	if err != nil {
		return fmt.Errorf("store: failed to insert message: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE conversations SET
			message_count = message_count + 1,
			last_message_at = $1,
			updated_at = $1
		WHERE conversation_id = $2
	`, now, conversationID)

	if err != nil {
		return fmt.Errorf("store: failed to update counters: %w", err)
	}
	return nil
}

// GetHistory returns the most recent messages in chronological order.
func (s *PostgresStore) GetHistory(ctx context.Context, conversationID string, limit int) ([]MessageRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, metadata, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query history: %w", err)
	}
	defer rows.Close()

	var records []MessageRecord
	for rows.Next() {
		var (
			rec      MessageRecord
			metaJSON []byte
		)
		if err := rows.Scan(&rec.Role, &rec.Content, &metaJSON, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("store: failed to scan message: %w", err)
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &rec.Metadata)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to iterate history: %w", err)
	}

	// Query returned newest first; callers want oldest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("store: failed to marshal metadata: %w", err)
	}
	return data, nil
}
