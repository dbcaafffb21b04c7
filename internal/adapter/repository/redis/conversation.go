package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/billwatch/internal/domain"
)

// ConversationStore implements usecase.ConversationStore using Redis.
// A key exists while the operator is expected to reply with a top-up
// amount; the TTL bounds how long an abandoned prompt stays pending.
type ConversationStore struct {
	client *redis.Client
	prefix string
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(client *redis.Client) *ConversationStore {
	return &ConversationStore{
		client: client,
		prefix: "conversation:",
	}
}

// Set marks the chat as awaiting an amount for the given service.
func (s *ConversationStore) Set(ctx context.Context, chatID int64, service domain.ServiceName, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(chatID), string(service), ttl).Err()
}

// Get returns the pending service for the chat, if any.
func (s *ConversationStore) Get(ctx context.Context, chatID int64) (domain.ServiceName, bool, error) {
	value, err := s.client.Get(ctx, s.key(chatID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return domain.ServiceName(value), true, nil
}

// Clear removes the pending conversation for the chat.
func (s *ConversationStore) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.key(chatID)).Err()
}

func (s *ConversationStore) key(chatID int64) string {
	return s.prefix + strconv.FormatInt(chatID, 10)
}
