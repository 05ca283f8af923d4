package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arglo/storefront/pkg/breaker"
	"github.com/arglo/storefront/pkg/database"
)

// eventsSuffix names the pub/sub channel under the namespace.
const eventsSuffix = ":storage-events"

// RedisStore is a Store on a Redis database shared by every tab of a
// namespace. Writes are published on "<namespace>:storage-events" in the same
// transaction as the write itself.
type RedisStore struct {
	client    *redis.Client
	namespace string
	origin    string
	cb        *breaker.Breaker[string]
	logger    *slog.Logger
}

// NewRedisStore creates a Redis-backed store for a new tab of namespace.
func NewRedisStore(client *redis.Client, namespace string, logger *slog.Logger) *RedisStore {
	cfg := breaker.DefaultConfig("storage-redis")
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.Nil)
	}

	return &RedisStore{
		client:    client,
		namespace: namespace,
		origin:    uuid.NewString(),
		cb:        breaker.New[string](cfg, logger),
		logger:    logger,
	}
}

// Origin implements Store.
func (s *RedisStore) Origin() string {
	return s.origin
}

// Channel returns the pub/sub channel changes are published on.
func (s *RedisStore) Channel() string {
	return s.namespace + eventsSuffix
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (value string, err error) {
	ctx, end := database.TraceCommand(ctx, "GET", s.key(key))
	defer func() { end(err) }()

	value, err = s.cb.Execute(func() (string, error) {
		return s.client.Get(ctx, s.key(key)).Result()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, classify(err))
	}
	return value, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceCommand(ctx, "SET", s.key(key))
	defer func() { end(err) }()

	v := value
	msg, err := json.Marshal(Change{Key: key, NewValue: &v, Origin: s.origin})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	_, err = s.cb.Execute(func() (string, error) {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(key), value, 0)
			pipe.Publish(ctx, s.Channel(), msg)
			return nil
		})
		return "", err
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, classify(err))
	}
	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceCommand(ctx, "DEL", s.key(key))
	defer func() { end(err) }()

	msg, err := json.Marshal(Change{Key: key, Origin: s.origin})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	_, err = s.cb.Execute(func() (string, error) {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.key(key))
			pipe.Publish(ctx, s.Channel(), msg)
			return nil
		})
		return "", err
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, classify(err))
	}
	return nil
}

// Subscribe implements Store. It returns once Redis has confirmed the
// subscription, so writes made by other tabs after it returns are delivered.
func (s *RedisStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	ps := s.client.Subscribe(ctx, s.Channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", s.Channel(), classify(err))
	}

	out := make(chan Change, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil || c.Key == "" {
					s.logger.WarnContext(ctx, "dropping malformed storage event",
						slog.String("channel", msg.Channel),
						slog.Any("error", err),
					)
					continue
				}
				if c.Origin == s.origin {
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// classify maps Redis failures onto the storage sentinels. Anything that is
// not a server reply means Redis could not be reached.
func classify(err error) error {
	var reply redis.Error
	switch {
	case errors.Is(err, breaker.ErrOpen), errors.Is(err, breaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	case errors.As(err, &reply):
		if strings.HasPrefix(reply.Error(), "OOM") {
			return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}
