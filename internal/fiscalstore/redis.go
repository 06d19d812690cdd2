package fiscalstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fiscal:last-combo:"

// RedisStore keeps combos in Redis so every instance shares them
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. A zero ttl keeps entries forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Connect dials addr and checks the connection
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("fiscalstore: ping: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, entityID string) (Combo, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+entityID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Combo{}, false, nil
	}
	if err != nil {
		return Combo{}, false, fmt.Errorf("fiscalstore: get %s: %w", entityID, err)
	}

	var c Combo
	if err := json.Unmarshal(data, &c); err != nil {
		return Combo{}, false, fmt.Errorf("fiscalstore: decode %s: %w", entityID, err)
	}
	return c, true, nil
}

func (s *RedisStore) Set(ctx context.Context, entityID string, combo Combo) error {
	if !combo.valid() {
		return ErrInvalidCombo
	}
	data, err := json.Marshal(combo)
	if err != nil {
		return fmt.Errorf("fiscalstore: encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+entityID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("fiscalstore: set %s: %w", entityID, err)
	}
	return nil
}
