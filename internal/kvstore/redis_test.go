package kvstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ""), mr
}

func TestLoadMissingKeyReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %#v", tasks)
	}
}

func TestSaveThenLoad(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{{ID: "t1", Title: "Water plants", Priority: model.PriorityP3, Status: model.StatusPending, DueDate: due}}
	if err := store.Save(ctx, tasks); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists(DefaultKey) {
		t.Fatalf("expected snapshot under %q", DefaultKey)
	}
	if ttl := mr.TTL(DefaultKey); ttl != 0 {
		t.Fatalf("expected snapshot without expiry, got %v", ttl)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "t1" || !loaded[0].DueDate.Equal(due) {
		t.Fatalf("unexpected tasks: %#v", loaded)
	}
}

func TestLoadCorruptValueReturnsEmpty(t *testing.T) {
	store, mr := newTestStore(t)
	if err := mr.Set(DefaultKey, "%%%"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %d", len(tasks))
	}
}

func TestLoadReportsConnectionErrors(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

func TestDialRejectsBadURL(t *testing.T) {
	if _, err := Dial(context.Background(), "not-a-url", ""); err == nil {
		t.Fatalf("expected parse error")
	}
}
