package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// expiry of a day counter, past the end of its day
const redisKeyTTL = 48 * time.Hour

var debitScript = redis.NewScript(`
local used = tonumber(redis.call("GET", KEYS[1]) or "0")
if used >= tonumber(ARGV[1]) then
	return -1
end
used = redis.call("INCR", KEYS[1])
if used == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[2])
end
return used
`)

var creditScript = redis.NewScript(`
local used = tonumber(redis.call("GET", KEYS[1]) or "0")
if used <= 0 then
	return 0
end
return redis.call("DECR", KEYS[1])
`)

// RedisLedger keeps one counter key per diner and day.
type RedisLedger struct {
	client *redis.Client
	limit  int
	now    func() time.Time
}

func NewRedisLedger(client *redis.Client, dailyLimit int) *RedisLedger {
	return &RedisLedger{client: client, limit: dailyLimit, now: time.Now}
}

func redisKey(c Charge) string {
	return fmt.Sprintf("quota:scrape:%s:%s", c.DinerID, c.Day)
}

func (l *RedisLedger) today(dinerID string) Charge {
	return Charge{DinerID: dinerID, Day: day(l.now())}
}

func (l *RedisLedger) Debit(ctx context.Context, dinerID string) (Charge, bool, error) {
	charge := l.today(dinerID)
	if l.limit <= 0 {
		return charge, false, nil
	}
	used, err := debitScript.Run(ctx, l.client,
		[]string{redisKey(charge)}, l.limit, int(redisKeyTTL.Seconds())).Int()
	if err != nil {
		return charge, false, fmt.Errorf("redis debit: %w", err)
	}
	return charge, used > 0, nil
}

func (l *RedisLedger) Credit(ctx context.Context, charge Charge) error {
	if err := creditScript.Run(ctx, l.client, []string{redisKey(charge)}).Err(); err != nil {
		return fmt.Errorf("redis credit: %w", err)
	}
	return nil
}

func (l *RedisLedger) Remaining(ctx context.Context, dinerID string) (int, error) {
	val, err := l.client.Get(ctx, redisKey(l.today(dinerID))).Result()
	if errors.Is(err, redis.Nil) {
		return remaining(l.limit, 0), nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis remaining: %w", err)
	}
	used, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse quota counter: %w", err)
	}
	return remaining(l.limit, used), nil
}
