package conversation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

type State string

const (
	StateIdle              State = ""
	StateAwaitingPromocode State = "awaiting_promocode"
)

// Store keeps the step of a multi-message dialog per user. A missing or
// expired entry reads as StateIdle.
type Store interface {
	Set(ctx context.Context, userID int64, state State) error
	Get(ctx context.Context, userID int64) (State, error)
	Clear(ctx context.Context, userID int64) error
}

type memoryStore struct {
	states *cache.Cache
	ttl    time.Duration
}

func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		states: cache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

func (s *memoryStore) Set(_ context.Context, userID int64, state State) error {
	s.states.Set(key(userID), state, s.ttl)
	return nil
}

func (s *memoryStore) Get(_ context.Context, userID int64) (State, error) {
	state, ok := s.states.Get(key(userID))
	if !ok {
		return StateIdle, nil
	}

	return state.(State), nil
}

func (s *memoryStore) Clear(_ context.Context, userID int64) error {
	s.states.Delete(key(userID))
	return nil
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	return &redisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *redisStore) Set(ctx context.Context, userID int64, state State) error {
	if err := s.rdb.Set(ctx, key(userID), string(state), s.ttl).Err(); err != nil {
		return errs.NewStack(fmt.Errorf("failed to set conversation state: %w", err))
	}

	return nil
}

func (s *redisStore) Get(ctx context.Context, userID int64) (State, error) {
	state, err := s.rdb.Get(ctx, key(userID)).Result()
	if err == redis.Nil {
		return StateIdle, nil
	}
	if err != nil {
		return StateIdle, errs.NewStack(fmt.Errorf("failed to get conversation state: %w", err))
	}

	return State(state), nil
}

func (s *redisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return errs.NewStack(fmt.Errorf("failed to clear conversation state: %w", err))
	}

	return nil
}

func key(userID int64) string {
	return "conversation:" + strconv.FormatInt(userID, 10)
}
