package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
)

// PostgresConfig is read with prefix POSTGRES. It is only required when the record
// backend is "postgres".
type PostgresConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true"`
	DialTimeout  time.Duration `split_words:"true" default:"5s"`
	ReadTimeout  time.Duration `split_words:"true" default:"10s"`
	WriteTimeout time.Duration `split_words:"true" default:"10s"`
}

func (c *PostgresConfig) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("%w: postgres dsn is required", contract.ErrValidation)
	}
	return nil
}

// OpenPostgres returns a bun handle over pgdriver.
func OpenPostgres(cfg PostgresConfig) *bun.DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(strings.TrimSpace(cfg.DSN)),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
		pgdriver.WithReadTimeout(cfg.ReadTimeout),
		pgdriver.WithWriteTimeout(cfg.WriteTimeout),
	)
	return bun.NewDB(sql.OpenDB(connector), pgdialect.New())
}

type recordRow struct {
	bun.BaseModel `bun:"table:voice_records"`

	Domain    string    `bun:"domain,pk"`
	RecordID  string    `bun:"record_id,pk"`
	Payload   string    `bun:"payload,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// CreateSchema creates the shared records table when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*recordRow)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("create voice_records: %w", err)
	}
	return nil
}

// BunStore keeps every domain in one table keyed by (domain, record_id), with the record
// itself in a JSON payload column. On Postgres UpdateByID locks the row with
// SELECT ... FOR UPDATE, so concurrent writers to one record are serialised.
type BunStore[T Identified] struct {
	db     *bun.DB
	domain string
	now    func() time.Time
}

func NewBunStore[T Identified](db *bun.DB, domain string) *BunStore[T] {
	return &BunStore[T]{db: db, domain: domain, now: time.Now}
}

// selectForUpdate reads one row, locking it on Postgres. SQLite has no row locks and
// serialises writers at the database level instead.
func (s *BunStore[T]) selectForUpdate(db bun.IDB, row *recordRow, id string) *bun.SelectQuery {
	q := db.NewSelect().
		Model(row).
		Where("domain = ?", s.domain).
		Where("record_id = ?", id)
	if s.db.Dialect().Name() == dialect.PG {
		q = q.For("UPDATE")
	}
	return q
}

func (s *BunStore[T]) Load(ctx context.Context) ([]T, error) {
	var rows []recordRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("domain = ?", s.domain).
		Order("created_at ASC", "record_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select %s records: %w", s.domain, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var rec T
		if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorrupt, s.domain, row.RecordID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *BunStore[T]) Append(ctx context.Context, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	now := s.now().UTC()
	row := &recordRow{
		Domain:    s.domain,
		RecordID:  rec.RecordID(),
		Payload:   string(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*recordRow)(nil)).
			Where("domain = ?", s.domain).
			Where("record_id = ?", row.RecordID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check %s: %w", row.RecordID, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, row.RecordID)
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert %s: %w", row.RecordID, err)
		}
		return nil
	})
}

func (s *BunStore[T]) UpdateByID(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var updated T
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(recordRow)
		err := s.selectForUpdate(tx, row, id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("select %s: %w", id, err)
		}

		var rec T
		if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
			return fmt.Errorf("%w: %s/%s: %v", ErrCorrupt, s.domain, id, err)
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		if rec.RecordID() != id {
			return fmt.Errorf("update of %s changed its id to %s", id, rec.RecordID())
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		row.Payload = string(payload)
		row.UpdatedAt = s.now().UTC()

		if _, err := tx.NewUpdate().
			Model(row).
			Column("payload", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		updated = rec
		return nil
	})
	return updated, err
}
