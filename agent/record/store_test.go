package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

type note struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Body   string `json:"body,omitempty"`
}

func (n note) RecordID() string { return n.ID }

func setStatus(status string) func(*note) error {
	return func(n *note) error {
		n.Status = status
		return nil
	}
}

// exerciseStore runs the contract every Store implementation shares.
func exerciseStore(t *testing.T, store Store[note]) {
	t.Helper()
	ctx := context.Background()

	all, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	require.NoError(t, store.Append(ctx, note{ID: "a", Status: "new"}))
	require.NoError(t, store.Append(ctx, note{ID: "b", Status: "new"}))
	require.ErrorIs(t, store.Append(ctx, note{ID: "a"}), ErrDuplicateID)

	updated, err := store.UpdateByID(ctx, "b", setStatus("done"))
	require.NoError(t, err)
	assert.Equal(t, "done", updated.Status)

	_, err = store.UpdateByID(ctx, "zzz", setStatus("done"))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateByID(ctx, "a", func(n *note) error {
		n.ID = "renamed"
		return nil
	})
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = store.UpdateByID(ctx, "a", func(*note) error { return boom })
	require.ErrorIs(t, err, boom)

	all, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "new", all[0].Status)
	assert.Equal(t, "done", all[1].Status)

	got, err := FindByID(ctx, store, "b")
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)

	latest, err := Latest(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)

	ok, err := Exists(ctx, store, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = Exists(ctx, store, "c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore[note]())
}

func TestJSONFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "orders.json")
	store := NewJSONFileStore[note](path)
	exerciseStore(t, store)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk []note
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Len(t, onDisk, 2)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestJSONFileStoreEnvelopeKeepsSiblings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fraud_cases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bank":"SecureBank","cases":[{"id":"c1","status":"pending_review"}]}`), 0o644))

	store := NewJSONFileStore[note](path, WithEnvelope("cases"))
	_, err := store.UpdateByID(context.Background(), "c1", setStatus("confirmed_safe"))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `"SecureBank"`, string(doc["bank"]))
	assert.JSONEq(t, `[{"id":"c1","status":"confirmed_safe"}]`, string(doc["cases"]))
}

func TestJSONFileStoreCorruptFileIsNotOverwritten(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte("[{oops"), 0o644))

	store := NewJSONFileStore[note](path)
	require.ErrorIs(t, store.Append(context.Background(), note{ID: "x"}), ErrCorrupt)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[{oops", string(raw))
}

func TestJSONFileStoreConcurrentAppendsInProcess(t *testing.T) {
	t.Parallel()

	store := NewJSONFileStore[note](filepath.Join(t.TempDir(), "orders.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, note{ID: string(rune('a' + i))}))
		}()
	}
	wg.Wait()

	all, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestDirStore(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "leads")
	store := NewDirStore(dir, func(n note) string { return "note_" + n.ID + ".json" })
	exerciseStore(t, store)

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func openSQLite(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

func TestBunStore(t *testing.T) {
	t.Parallel()

	db := openSQLite(t)
	store := NewBunStore[note](db, "notes")
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	exerciseStore(t, store)

	other := NewBunStore[note](db, "other")
	all, err := other.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "domains must not see each other's records")
}

func TestBunStoreLocksRowOnlyOnPostgres(t *testing.T) {
	t.Parallel()

	lite := NewBunStore[note](openSQLite(t), "notes")
	q := lite.selectForUpdate(lite.db, new(recordRow), "a").String()
	assert.NotContains(t, strings.ToUpper(q), "FOR UPDATE")

	pg := OpenPostgres(PostgresConfig{DSN: "postgres://u:p@localhost:5432/voice?sslmode=disable"})
	t.Cleanup(func() { _ = pg.Close() })
	store := NewBunStore[note](pg, "notes")
	q = store.selectForUpdate(store.db, new(recordRow), "a").String()
	assert.Contains(t, q, "FOR UPDATE")
	assert.Contains(t, q, "'notes'")
}

func TestSeedCopiesOnlyIntoEmptyStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src := NewMemoryStore(note{ID: "a", Status: "new"}, note{ID: "b", Status: "new"})
	dst := NewBunStore[note](openSQLite(t), "notes")

	n, err := Seed[note](ctx, dst, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, src.Append(ctx, note{ID: "c"}))
	n, err = Seed[note](ctx, dst, src)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := dst.Load(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	n, err = Seed[note](ctx, NewMemoryStore[note](), NewJSONFileStore[note](filepath.Join(t.TempDir(), "missing.json")))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgresConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := PostgresConfig{}
	require.Error(t, cfg.Validate())
	cfg.DSN = "postgres://u:p@localhost:5432/voice?sslmode=disable"
	require.NoError(t, cfg.Validate())
}

type fakePublisher struct {
	got []any
	err error
}

func (f *fakePublisher) Publish(_ context.Context, body any) (string, error) {
	f.got = append(f.got, body)
	return "msg", f.err
}

func TestPublishNotifier(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := NewPublishNotifier(pub)
	ev := Event{Kind: EventOrderPlaced, RecordID: "ORD-1", Persona: "ecommerce", At: time.Now()}
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Len(t, pub.got, 1)
	assert.Equal(t, ev, pub.got[0])

	pub.err = errors.New("down")
	require.Error(t, n.Notify(context.Background(), ev))
	require.NoError(t, NoopNotifier{}.Notify(context.Background(), ev))
}
