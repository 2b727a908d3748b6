package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/store"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// Assembler loads conversation history and file extraction metadata for
// a turn. Both sub-fetches are optional context: every failure is
// logged and degrades to empty, never propagated.
type Assembler struct {
	conversations store.ConversationStore
	files         store.FileMetadataStore
	historyLimit  int
	logger        *logging.Logger
}

// NewAssembler creates a context assembler. Either store may be nil.
func NewAssembler(conversations store.ConversationStore, files store.FileMetadataStore, historyLimit int, logger *logging.Logger) *Assembler {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Assembler{
		conversations: conversations,
		files:         files,
		historyLimit:  historyLimit,
		logger:        logger.Component("assembler"),
	}
}

// Assemble fills turn.History and turn.FileContext. The two fetches
// are independent and run concurrently; they write disjoint fields of
// the turn.
func (a *Assembler) Assemble(ctx context.Context, turn *TurnContext) {
	g, gctx := errgroup.WithContext(ctx)

	if a.conversations != nil && turn.Persistable() {
		g.Go(func() error {
			records, err := a.conversations.GetHistory(gctx, turn.ConversationID, a.historyLimit)
			if err != nil {
				a.logger.Warn("history fetch failed",
					"conversation_id", turn.ConversationID, "error", err)
				return nil
			}
			turn.History = toHistoryMessages(records)
			return nil
		})
	}

	// File context only matters for tracking turns with an attachment.
	if a.files != nil && turn.Intent == IntentTracking && turn.FileID != "" {
		g.Go(func() error {
			metadata, err := a.files.GetFileMetadata(gctx, turn.ConversationID, turn.FileID)
			if err != nil {
				a.logger.Warn("file metadata fetch failed",
					"conversation_id", turn.ConversationID, "file_id", turn.FileID, "error", err)
				return nil
			}
			if metadata != nil {
				turn.FileContext = metadata
			}
			return nil
		})
	}

	// Sub-fetches swallow their own failures.
	_ = g.Wait()
}

func toHistoryMessages(records []store.MessageRecord) []HistoryMessage {
	messages := make([]HistoryMessage, 0, len(records))
	for _, rec := range records {
		messages = append(messages, HistoryMessage{
			Role:      rec.Role,
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
			Metadata:  rec.Metadata,
		})
	}
	return messages
}
