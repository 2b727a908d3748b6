package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

const historyTTL = 24 * time.Hour

// CachedStore layers a Redis recent-history cache over a backing
// ConversationStore. Appends write through to both; reads prefer the
// cache and fall back to the backing store on a miss.
type CachedStore struct {
	backing  ConversationStore
	redis    *redis.Client
	tracer   trace.Tracer
	logger   *logging.Logger
	maxItems int64
}

// NewCachedStore wraps backing with a Redis cache. A nil redis client
// disables caching and passes every call straight through.
func NewCachedStore(backing ConversationStore, redisClient *redis.Client, logger *logging.Logger) *CachedStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{
		backing:  backing,
		redis:    redisClient,
		tracer:   otel.Tracer("smsa.internal.store.history"),
		logger:   logger.Component("history_cache"),
		maxItems: 50,
	}
}

// EnsureConversation delegates to the backing store.
func (s *CachedStore) EnsureConversation(ctx context.Context, conversationID, userID string, metadata map[string]any) error {
	if s.backing == nil {
		return nil
	}
	return s.backing.EnsureConversation(ctx, conversationID, userID, metadata)
}

// AppendMessage writes the message to the backing store and pushes it
// onto the cached tail. A cache failure is logged but never surfaced;
// the backing store remains the source of truth.
func (s *CachedStore) AppendMessage(ctx context.Context, conversationID, role, content string, metadata map[string]any) error {
	ctx, span := s.tracer.Start(ctx, "store.append_message")
	defer span.End()

	var backingErr error
	if s.backing != nil {
		backingErr = s.backing.AppendMessage(ctx, conversationID, role, content, metadata)
	}

	if s.redis != nil {
		rec := MessageRecord{Role: role, Content: content, Timestamp: time.Now(), Metadata: metadata}
		if err := s.pushCached(ctx, conversationID, rec); err != nil {
			span.RecordError(err)
			s.logger.Warn("history cache append failed",
				"conversation_id", conversationID, "error", err)
		}
	}
	return backingErr
}

// GetHistory returns the most recent messages, oldest first. Cache
// hits avoid the backing store entirely; a miss falls through and
// repopulates the cache.
func (s *CachedStore) GetHistory(ctx context.Context, conversationID string, limit int) ([]MessageRecord, error) {
	ctx, span := s.tracer.Start(ctx, "store.get_history")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	if s.redis != nil {
		records, err := s.loadCached(ctx, conversationID, limit)
		if err != nil {
			span.RecordError(err)
			s.logger.Warn("history cache read failed",
				"conversation_id", conversationID, "error", err)
		} else if records != nil {
			return records, nil
		}
	}

	if s.backing == nil {
		return nil, nil
	}
	records, err := s.backing.GetHistory(ctx, conversationID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if s.redis != nil && len(records) > 0 {
		if err := s.replaceCached(ctx, conversationID, records); err != nil {
			s.logger.Warn("history cache repopulate failed",
				"conversation_id", conversationID, "error", err)
		}
	}
	return records, nil
}

func (s *CachedStore) pushCached(ctx context.Context, conversationID string, rec MessageRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: failed to marshal cached message: %w", err)
	}
	key := historyKey(conversationID)
	pipe := s.redis.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.maxItems, -1)
	pipe.Expire(ctx, key, historyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// loadCached returns nil records (without error) on a cache miss.
func (s *CachedStore) loadCached(ctx context.Context, conversationID string, limit int) ([]MessageRecord, error) {
	raw, err := s.redis.LRange(ctx, historyKey(conversationID), int64(-limit), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("store: failed to read cached history: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	records := make([]MessageRecord, 0, len(raw))
	for _, item := range raw {
		var rec MessageRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("store: failed to decode cached message: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CachedStore) replaceCached(ctx context.Context, conversationID string, records []MessageRecord) error {
	key := historyKey(conversationID)
	pipe := s.redis.Pipeline()
	pipe.Del(ctx, key)
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("store: failed to marshal cached message: %w", err)
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.Expire(ctx, key, historyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func historyKey(id string) string {
	return fmt.Sprintf("history:%s", id)
}
