package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	flowRegister = "register"
	flowOrder    = "order"
)

const (
	stepFullName    = "full_name"
	stepPhone       = "phone_number"
	stepEmail       = "email"
	stepAddress     = "address"
	stepConfirmReg  = "confirm_registration"
	stepProduct     = "order_product"
	stepQuantity    = "order_quantity"
	stepMore        = "order_more"
	stepDescription = "order_description"
	stepConfirm     = "order_confirm"
)

type DraftItem struct {
	ProductID uint64 `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Session is the state of one chat's multi-step conversation.
type Session struct {
	Flow string `json:"flow"`
	Step string `json:"step"`

	FullName    string `json:"full_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`

	// Choices maps the numbers shown to the user to product ids.
	Choices     []DraftItem `json:"choices,omitempty"`
	Pending     *DraftItem  `json:"pending,omitempty"`
	Items       []DraftItem `json:"items,omitempty"`
	Description string      `json:"description,omitempty"`
}

// SessionStore persists sessions between webhook calls. Get returns nil, nil
// when the chat has no session.
type SessionStore interface {
	Get(ctx context.Context, chatID string) (*Session, error)
	Save(ctx context.Context, chatID string, s *Session) error
	Delete(ctx context.Context, chatID string) error
}

// RedisSessionStore keeps sessions as JSON with a sliding TTL, so abandoned
// conversations expire on their own.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(chatID string) string {
	return fmt.Sprintf("bot:session:%s", chatID)
}

func (r *RedisSessionStore) Get(ctx context.Context, chatID string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// a corrupt session is dropped rather than wedging the chat
		_ = r.Delete(ctx, chatID)
		return nil, nil
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, chatID string, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(chatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, chatID string) error {
	if err := r.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
