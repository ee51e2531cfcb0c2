package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestRedis starts a Redis container for testing.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Redis container not available for testing: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		client.Close()
		container.Terminate(context.Background())
	})

	return client
}

func TestNewRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	store := NewRedisStore(client, 0)
	if store == nil {
		t.Fatal("NewRedisStore returned nil")
	}
	if store.redis != client {
		t.Error("store redis client not set correctly")
	}
	if store.ttl != DefaultOperationTTL {
		t.Errorf("ttl = %v, want %v", store.ttl, DefaultOperationTTL)
	}
}

func TestNewRedisStore_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedisStore should panic with nil redis client")
		}
	}()
	NewRedisStore(nil, time.Minute)
}

func TestRedisStore_AppendAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	key := Key{OperationID: "sync-42", Kind: KindProjects}

	if _, ok, err := store.Load(ctx, key); ok || err != nil {
		t.Fatalf("Load before Append = ok %v, err %v; want miss", ok, err)
	}

	if err := store.Append(ctx, key, []Record{{"key": "P1"}, {"key": "P2"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, key, []Record{{"key": "P3"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, ok, err := store.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Load = ok %v, err %v; want hit", ok, err)
	}

	want := []string{"P1", "P2", "P3"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, k := range want {
		if records[i]["key"] != k {
			t.Errorf("records[%d] = %v, want %s", i, records[i]["key"], k)
		}
	}

	ttl, err := client.TTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("entry TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRedisStore_EmptyEntryExists(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	key := Key{OperationID: "sync-42", Kind: KindSprints}
	if err := store.Append(ctx, key, nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, ok, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Error("empty entry should exist after Append")
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestRedisStore_SharedAcrossOperationHandles(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	workerA := NewOperationWithStore("run-7", store)
	workerB := NewOperationWithStore("run-7", store)
	other := NewOperationWithStore("run-8", store)

	if err := workerA.Append(ctx, KindBoards, []Record{{"id": "B1"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, ok, err := workerB.Lookup(ctx, KindBoards); !ok || err != nil {
		t.Errorf("worker of the same operation should hit: ok %v err %v", ok, err)
	}
	if _, ok, _ := other.Lookup(ctx, KindBoards); ok {
		t.Error("a different operation must miss")
	}
}

func TestRedisStore_Clear(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	for _, kind := range Kinds {
		if err := store.Append(ctx, Key{OperationID: "run-9", Kind: kind}, []Record{{"id": 1}}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := store.Clear(ctx, "run-9"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, kind := range Kinds {
		if _, ok, _ := store.Load(ctx, Key{OperationID: "run-9", Kind: kind}); ok {
			t.Errorf("%s entry should be gone after Clear", kind)
		}
	}
}

func TestRedisStore_InvalidEntry(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	key := Key{OperationID: "sync-42", Kind: KindIssues}
	client.Set(ctx, key.PresenceKey(), "1", time.Minute)
	client.RPush(ctx, key.String(), "not json")

	if _, _, err := store.Load(ctx, key); err == nil {
		t.Error("Load should fail on a corrupted record")
	}
}
