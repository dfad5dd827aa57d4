package redisio

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/person"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		addr    string
		db      int
		key     string
		wantErr bool
	}{
		{name: "defaults", raw: "redis://localhost:6379", addr: "localhost:6379", key: DefaultKey},
		{name: "db and key", raw: "redis://cache.internal:6380/3?key=leads:out", addr: "cache.internal:6380", db: 3, key: "leads:out"},
		{name: "blank key falls back", raw: "redis://localhost:6379/0?key=%20", addr: "localhost:6379", key: DefaultKey},
		{name: "wrong scheme", raw: "http://localhost:6379", wantErr: true},
		{name: "bad db", raw: "redis://localhost:6379/notanumber", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q) error = %v", tt.raw, err)
			}
			if got.Redis.Addr != tt.addr || got.Redis.DB != tt.db || got.Key != tt.key {
				t.Errorf("ParseURL(%q) = addr %q db %d key %q", tt.raw, got.Redis.Addr, got.Redis.DB, got.Key)
			}
		})
	}
}

func TestNew_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("New should panic with nil redis client")
		}
	}()
	New(nil, "")
}

// setupTestRedis connects to a local server on DB 15 and skips when none runs.
// The integration build tag covers the containerized path.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func sample() []outcome.Record {
	email := "john.doe@example.com"
	at := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	return []outcome.Record{
		{Query: &person.Query{FirstName: "John", LastName: "Doe", Domain: "example.com"}, Email: &email, Certainty: 80, Status: outcome.StatusFound, Timestamp: at},
		{Query: &person.Query{FirstName: "Ann", Domain: "example.com"}, Status: outcome.StatusNotFound, Timestamp: at},
	}
}

// exerciseSink stores two batches and the statistics record, then checks
// the list holds them in push order.
func exerciseSink(t *testing.T, client *redis.Client) {
	t.Helper()
	ctx := context.Background()
	s := New(client, "test:results")

	records := sample()
	if err := s.Store(ctx, records[:1]); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Store(ctx, records[1:]); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.StoreStatistics(ctx, outcome.Count(records, time.Now())); err != nil {
		t.Fatalf("StoreStatistics() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	items, err := client.LRange(ctx, "test:results", 0, -1).Result()
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("list length = %d, want 3", len(items))
	}

	var first outcome.Record
	if err := json.Unmarshal([]byte(items[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if first.EmailValue() != "john.doe@example.com" || first.Status != outcome.StatusFound {
		t.Errorf("first = %+v", first)
	}

	var stats outcome.Statistics
	if err := json.Unmarshal([]byte(items[2]), &stats); err != nil {
		t.Fatalf("decode statistics: %v", err)
	}
	if stats.Type != outcome.TypeStatistics || stats.Total != 2 || stats.Found != 1 || stats.NotFound != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSink_StorePushesInOrder(t *testing.T) {
	exerciseSink(t, setupTestRedis(t))
}
