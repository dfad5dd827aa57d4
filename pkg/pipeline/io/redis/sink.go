// Package redisio appends run outcomes to a Redis list as JSON documents.
package redisio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
)

// DefaultKey is the list records are pushed to when the URL names none.
const DefaultKey = "emailfinder:results"

var _ core.Sink = (*Sink)(nil)

// Sink RPUSHes every record of a batch in one pipeline, followed at the end
// of the run by the statistics record, so consumers can BLPOP the stream.
type Sink struct {
	client *redis.Client
	key    string
	owned  bool
}

// Options is the parsed form of a redis:// output URL.
type Options struct {
	Redis *redis.Options
	Key   string
}

// ParseURL accepts redis://[user:pass@]host:port/db?key=name.
func ParseURL(raw string) (Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Options{}, fmt.Errorf("parse redis url: %w", err)
	}
	key := strings.TrimSpace(u.Query().Get("key"))
	if key == "" {
		key = DefaultKey
	}
	q := u.Query()
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return Options{}, fmt.Errorf("parse redis url: %w", err)
	}
	return Options{Redis: opts, Key: key}, nil
}

// Dial connects to the server named by rawURL and checks it with PING.
func Dial(ctx context.Context, rawURL string) (*Sink, error) {
	opts, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	s := New(client, opts.Key)
	s.owned = true
	return s, nil
}

// New wraps an existing client. Close does not close client.
func New(client *redis.Client, key string) *Sink {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultKey
	}
	return &Sink{client: client, key: key}
}

// Key returns the list name the sink pushes to.
func (s *Sink) Key() string { return s.key }

func (s *Sink) Store(ctx context.Context, records []outcome.Record) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]any, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		values = append(values, b)
	}
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, s.key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	return nil
}

func (s *Sink) StoreStatistics(ctx context.Context, stats outcome.Statistics) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, b).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if !s.owned {
		return nil
	}
	if err := s.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
