package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gourmet-linebot/models"
)

const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// HistoryStore keeps a bounded conversation history per LINE user in a Redis
// list. Each turn stores two entries (the user message and the bot reply);
// lists are trimmed to maxTurns turns and expire after ttl.
type HistoryStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

func NewHistoryStore(client *redis.Client, maxTurns int, ttl time.Duration) *HistoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultHistoryTurns
	}

	return &HistoryStore{
		client:   client,
		maxTurns: maxTurns,
		ttl:      ttl,
	}
}

func historyKey(userID string) string {
	return fmt.Sprintf("history:%s", userID)
}

// Recent returns the stored conversation entries for the user, oldest first.
func (s *HistoryStore) Recent(ctx context.Context, userID string) ([]models.ConversationEntry, error) {
	key := historyKey(userID)

	vals, err := s.client.LRange(ctx, key, int64(-s.maxTurns*2), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]models.ConversationEntry, 0, len(vals))
	for _, v := range vals {
		var entry models.ConversationEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// AppendTurn records one (input, reply) pair and evicts the oldest turns
// beyond the configured cap.
func (s *HistoryStore) AppendTurn(ctx context.Context, userID, input, reply string) error {
	key := historyKey(userID)
	now := time.Now()

	entries := []models.ConversationEntry{
		{Role: RoleHuman, Content: input, Timestamp: now},
		{Role: RoleAI, Content: reply, Timestamp: now},
	}

	pipe := s.client.Pipeline()
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		pipe.RPush(ctx, key, string(data))
	}
	pipe.LTrim(ctx, key, int64(-s.maxTurns*2), -1)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}

	return nil
}

// Clear drops the conversation history for the user.
func (s *HistoryStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, historyKey(userID)).Err()
}
