package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/game"
)

func newRedisStore(t *testing.T, opts ...StoreOption) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, opts...)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	return store, mr
}

func sampleState() *SessionState {
	now := time.Date(2025, 11, 25, 10, 30, 0, 0, time.UTC)
	st := NewSessionState("sess-1", "ecommerce", now)
	st.Cart.Items = []commerce.LineItem{{ProductID: "hoodie-001", Name: "Black Hoodie", UnitPrice: 1499, Currency: "INR", Quantity: 2, Size: "M"}}
	st.LastShown = []string{"hoodie-001", "mug-001"}
	adv := game.NewAdventure()
	st.Game = &adv
	st.AppendMessages(schema.UserMessage("show me hoodies"), nil, schema.AssistantMessage("Here are two.", nil))
	return st
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, "sess-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() before save error = %v, want ErrStateNotFound", err)
	}

	st := sampleState()
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if st.Version != 1 {
		t.Fatalf("Version = %d, want 1", st.Version)
	}

	got, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Persona != "ecommerce" || got.Version != 1 {
		t.Fatalf("Load() = %+v", got)
	}
	if len(got.Cart.Items) != 1 || got.Cart.Items[0].Size != "M" || got.Cart.Items[0].Quantity != 2 {
		t.Fatalf("cart not restored: %+v", got.Cart.Items)
	}
	if len(got.Transcript) != 2 || got.Transcript[0].Content != "show me hoodies" {
		t.Fatalf("transcript not restored: %+v", got.Transcript)
	}
	if got.Game == nil || got.Game.Location != st.Game.Location {
		t.Fatalf("game state not restored: %+v", got.Game)
	}

	got.Cart.Clear()
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	again, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !again.Cart.Empty() || again.Version != 2 {
		t.Fatalf("update not persisted: version=%d items=%d", again.Version, len(again.Cart.Items))
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "sess-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after delete error = %v, want ErrStateNotFound", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newRedisStore(t)
	exerciseStore(t, store)
}

func TestMemoryStoreDoesNotShareState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	st := sampleState()
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	st.Cart.Clear()

	got, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Cart.Empty() {
		t.Fatal("mutating the saved pointer must not change stored state")
	}
}

func TestRedisStoreAppliesPrefixAndTTL(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, WithKeyPrefix("test:"), WithTTL(time.Hour))

	if err := store.Save(context.Background(), sampleState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !mr.Exists("test:sess-1") {
		t.Fatalf("expected key test:sess-1, have %v", mr.Keys())
	}
	if ttl := mr.TTL("test:sess-1"); ttl != time.Hour {
		t.Fatalf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Load(context.Background(), "sess-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after expiry error = %v, want ErrStateNotFound", err)
	}
}

func TestRedisStoreRejectsCorruptPayload(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t)
	if err := mr.Set(defaultStoreKeyPrefix+"sess-1", "{not json"); err != nil {
		t.Fatalf("seed error = %v", err)
	}
	if _, err := store.Load(context.Background(), "sess-1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedisStoreReportsConnectionError(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t)
	mr.Close()

	if err := store.Save(context.Background(), sampleState()); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestNewRedisStoreValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewRedisStore(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })
	if _, err := NewRedisStore(client, WithTTL(-time.Second)); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestSaveValidatesState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("Save(nil) error = %v", err)
	}
	if err := store.Save(ctx, NewSessionState(" ", "retail", time.Now())); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Save(blank id) error = %v", err)
	}
	if err := store.Save(ctx, NewSessionState("s", "", time.Now())); !errors.Is(err, ErrMissingPersona) {
		t.Fatalf("Save(blank persona) error = %v", err)
	}

	bad := NewSessionState("s", "retail", time.Now())
	bad.Cart.Items = []commerce.LineItem{{Name: "Mug", Quantity: 0}}
	if err := store.Save(ctx, bad); !errors.Is(err, ErrCorruptCart) {
		t.Fatalf("Save(zero quantity) error = %v", err)
	}
	if _, err := store.Load(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Load(blank) error = %v", err)
	}
}
