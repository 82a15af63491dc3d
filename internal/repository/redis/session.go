package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/eventmarket/internal/dashboard"
)

const maxSessionRetries = 16

var ErrSessionContention = errors.New("dashboard session updated concurrently")

// SessionStore keeps one dashboard.State per customer. Updates run as
// optimistic transactions, so concurrent writers for the same customer are
// applied one after another and none is lost.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, customerID string) (dashboard.State, error) {
	const op = "redis.SessionStore.Load"

	st, err := s.get(ctx, s.rdb, customerID)
	if err != nil {
		return dashboard.State{}, fmt.Errorf("%s:%w", op, err)
	}

	return st, nil
}

// Update reads the customer's state, applies fn and writes the result back.
// fn may run more than once and must not have side effects.
func (s *SessionStore) Update(
	ctx context.Context,
	customerID string,
	fn func(dashboard.State) dashboard.State,
) (dashboard.State, error) {
	const op = "redis.SessionStore.Update"

	key := KeyDashboard(customerID)

	var out dashboard.State
	txf := func(tx *redis.Tx) error {
		st, err := s.get(ctx, tx, customerID)
		if err != nil {
			return err
		}

		next := fn(st)
		next.CustomerID = customerID

		b, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		out = next
		return nil
	}

	for range maxSessionRetries {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return dashboard.State{}, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	return dashboard.State{}, fmt.Errorf("%s:%w", op, ErrSessionContention)
}

func (s *SessionStore) get(ctx context.Context, c redis.Cmdable, customerID string) (dashboard.State, error) {
	raw, err := c.Get(ctx, KeyDashboard(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return dashboard.State{CustomerID: customerID}, nil
	}
	if err != nil {
		return dashboard.State{}, err
	}

	var st dashboard.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return dashboard.State{}, err
	}

	return st, nil
}
