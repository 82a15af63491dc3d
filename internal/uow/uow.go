package uow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"

	postgres "github.com/kirinyoku/eventmarket/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

const (
	defaultAttempts = 4
	defaultBackoff  = 20 * time.Millisecond
)

// UoW represents a unit of work. Transactions that fail with a
// serialization error or a deadlock are replayed from the start.
type UoW struct {
	store    *postgres.Store
	attempts uint64
	backoff  time.Duration
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{
		store:    store,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside the transaction with the given options. After a
// successful commit, it executes the hooks registered by the attempt that
// committed.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	b := retry.WithMaxRetries(u.attempts-1, retry.NewExponential(u.backoff))
	b = retry.WithJitterPercent(25, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		hooks = hooks[:0]

		err := u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if postgres.IsRetryable(err) {
			return retry.RetryableError(err)
		}

		return err
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
