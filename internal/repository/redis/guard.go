package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deletes KEYS[1] only while it still holds ARGV[1].
const luaReleaseOwned = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

// SubmissionGuard marks a (customer, service) pair as having a booking
// submission in flight. The mark expires on its own after ttl in case the
// worker never reports back.
type SubmissionGuard struct {
	rdb     *redis.Client
	ttl     time.Duration
	release *redis.Script
}

func NewSubmissionGuard(rdb *redis.Client, ttl time.Duration) *SubmissionGuard {
	return &SubmissionGuard{
		rdb:     rdb,
		ttl:     ttl,
		release: redis.NewScript(luaReleaseOwned),
	}
}

// Acquire reports false when another submission for the pair is still in
// flight.
func (g *SubmissionGuard) Acquire(ctx context.Context, customerID, serviceID, tempID string) (bool, error) {
	return g.rdb.SetNX(ctx, KeySubmission(customerID, serviceID), tempID, g.ttl).Result()
}

// Release clears the mark if it still belongs to tempID.
func (g *SubmissionGuard) Release(ctx context.Context, customerID, serviceID, tempID string) error {
	return g.release.Run(ctx, g.rdb, []string{KeySubmission(customerID, serviceID)}, tempID).Err()
}
