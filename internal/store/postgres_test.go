package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreEnsureConversationCreates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("conv-123").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO conversations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.EnsureConversation(context.Background(), "conv-123", "user-1", map[string]any{"channel": "web"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureConversationExistingBumpsTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("conv-123").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("7f3c1a40-8f6d-4f3f-9a90-5a4f1a1f1a1f"))
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.EnsureConversation(context.Background(), "conv-123", "user-1", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)

	mock.ExpectQuery("SELECT id FROM conversations").
		WithArgs("conv-123").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("7f3c1a40-8f6d-4f3f-9a90-5a4f1a1f1a1f"))
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO conversation_messages").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE conversations SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.AppendMessage(context.Background(), "conv-123", "user", "track my shipment", map[string]any{"intent": "TRACKING"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetHistoryChronologicalOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)

	t1 := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	// Query returns newest first; the store reverses to oldest first.
	mock.ExpectQuery("SELECT role, content, metadata, created_at").
		WithArgs("conv-123", 10).
		WillReturnRows(sqlmock.NewRows([]string{"role", "content", "metadata", "created_at"}).
			AddRow("assistant", "Your shipment was delivered.", []byte(`{"agent":"tracking"}`), t2).
			AddRow("user", "track 227047923763", []byte(`{}`), t1))

	records, err := store.GetHistory(context.Background(), "conv-123", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "user", records[0].Role)
	assert.Equal(t, "assistant", records[1].Role)
	assert.Equal(t, "tracking", records[1].Metadata["agent"])
}

func TestPostgresStoreNilReceiverIsNoop(t *testing.T) {
	var store *PostgresStore
	require.NoError(t, store.EnsureConversation(context.Background(), "conv", "user", nil))
	require.NoError(t, store.AppendMessage(context.Background(), "conv", "user", "hi", nil))

	records, err := store.GetHistory(context.Background(), "conv", 10)
	require.NoError(t, err)
	assert.Nil(t, records)
}
