package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list LLM events are mirrored to.
const DefaultRedisKey = "qgen:llm_events"

// defaultRedisMaxLen caps the mirrored list.
const defaultRedisMaxLen = 1000

// RedisEventRepo mirrors LLM request events into a capped Redis list so
// other processes can tail generation activity.
type RedisEventRepo struct {
	client *redis.Client
	key    string
	maxLen int64
}

// ParseRedisURL validates a Redis connection URL.
func ParseRedisURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return opts, nil
}

// NewRedisEventRepo connects to Redis and verifies the connection.
// An empty key uses DefaultRedisKey.
func NewRedisEventRepo(ctx context.Context, url, key string) (*RedisEventRepo, error) {
	opts, err := ParseRedisURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisEventRepo{client: client, key: key, maxLen: defaultRedisMaxLen}, nil
}

// redisEvent is the JSON document pushed per event.
type redisEvent struct {
	Timestamp time.Time `json:"timestamp"`
	LLMRequestEventData
}

func (r *RedisEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	payload, err := json.Marshal(redisEvent{Timestamp: time.Now().UTC(), LLMRequestEventData: data})
	if err != nil {
		return fmt.Errorf("marshal LLM event: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, payload)
	pipe.LTrim(ctx, r.key, 0, r.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror LLM event to redis: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recently mirrored events, newest first.
func (r *RedisEventRepo) Recent(ctx context.Context, n int64) ([]LLMRequestEventData, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read mirrored events: %w", err)
	}
	events := make([]LLMRequestEventData, 0, len(raw))
	for _, s := range raw {
		var ev redisEvent
		if err := json.Unmarshal([]byte(s), &ev); err != nil {
			return nil, fmt.Errorf("decode mirrored event: %w", err)
		}
		events = append(events, ev.LLMRequestEventData)
	}
	return events, nil
}

// Close shuts down the Redis client.
func (r *RedisEventRepo) Close() error {
	return r.client.Close()
}

// teeEventRepo fans an event out to several repos.
type teeEventRepo []EventRepo

// Tee returns an EventRepo that appends to every non-nil repo. A failure in
// one repo does not stop the others; all errors are joined.
func Tee(repos ...EventRepo) EventRepo {
	var out teeEventRepo
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (t teeEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	var errs []error
	for _, r := range t {
		if err := r.AppendLLMRequest(ctx, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
