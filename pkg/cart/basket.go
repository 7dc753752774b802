package cart

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/catalog"

	_ "modernc.org/sqlite"
)

// createdLayout is fixed width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Basket is a local cart stored in sqlite, used when no remote cart is configured.
type Basket struct {
	sql  *sql.DB
	lock *utils.DBLock
}

// OpenBasket opens (and creates if needed) the basket database at path.
func OpenBasket(path string) (*Basket, error) {
	absPath, err := utils.GetAbsDBPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, err
	}

	dsn := "file:" + absPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS line_items (
  ref         TEXT PRIMARY KEY,
  item_id     TEXT NOT NULL,
  kind        TEXT NOT NULL CHECK (kind IN ('event','competition')),
  unit_price  REAL NOT NULL,
  quantity    INTEGER NOT NULL DEFAULT 1,
  title       TEXT,
  starts_at   TEXT,
  time_of_day TEXT,
  venue       TEXT,
  city        TEXT,
  created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_line_items_item ON line_items(item_id);
    `); err != nil {
		db.Close()
		return nil, err
	}

	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Basket{sql: db, lock: lock}, nil
}

func (b *Basket) Close() error {
	if b == nil || b.sql == nil {
		return nil
	}
	return b.sql.Close()
}

// Add stores line. Adding the same Ref twice is a no-op.
func (b *Basket) Add(ctx context.Context, line LineItem) error {
	if line.Ref == "" {
		return fmt.Errorf("%w: missing ref", ErrRejected)
	}
	if err := b.lock.Lock(ctx); err != nil {
		return err
	}
	defer b.lock.Unlock()

	var startsAt interface{}
	if !line.Snapshot.Schedule.Start.IsZero() {
		startsAt = line.Snapshot.Schedule.Start.Format(time.RFC3339Nano)
	}
	_, err := b.sql.ExecContext(ctx, `INSERT INTO line_items(ref, item_id, kind, unit_price, quantity, title, starts_at, time_of_day, venue, city, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?) ON CONFLICT(ref) DO NOTHING`,
		line.Ref, line.ItemID, string(line.Kind), line.UnitPrice, line.Quantity,
		nullIfEmpty(line.Snapshot.Title), startsAt, nullIfEmpty(line.Snapshot.Schedule.TimeOfDay),
		nullIfEmpty(line.Snapshot.Location.Venue), nullIfEmpty(line.Snapshot.Location.City),
		line.CreatedAt.UTC().Format(createdLayout))
	return err
}

// List returns every stored line, oldest first.
func (b *Basket) List(ctx context.Context) ([]LineItem, error) {
	rows, err := b.sql.QueryContext(ctx, "SELECT ref, item_id, kind, unit_price, quantity, title, starts_at, time_of_day, venue, city, created_at FROM line_items ORDER BY created_at, ref")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LineItem
	for rows.Next() {
		var (
			l                                 LineItem
			kind, createdAt                   string
			title, startsAt, tod, venue, city sql.NullString
		)
		if err := rows.Scan(&l.Ref, &l.ItemID, &kind, &l.UnitPrice, &l.Quantity, &title, &startsAt, &tod, &venue, &city, &createdAt); err != nil {
			return nil, err
		}
		l.Kind = catalog.Kind(kind)
		l.Snapshot.Title = title.String
		l.Snapshot.Schedule.TimeOfDay = tod.String
		l.Snapshot.Location = catalog.Location{Venue: venue.String, City: city.String}
		if startsAt.Valid {
			if t, perr := time.Parse(time.RFC3339Nano, startsAt.String); perr == nil {
				l.Snapshot.Schedule.Start = t
			}
		}
		if t, perr := time.Parse(createdLayout, createdAt); perr == nil {
			l.CreatedAt = t
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Clear empties the basket and reports how many lines were removed. It does
// not wait: while another process is adding lines it fails with utils.ErrBusy.
func (b *Basket) Clear(ctx context.Context) (int64, error) {
	if err := b.lock.TryLock(); err != nil {
		return 0, err
	}
	defer b.lock.Unlock()

	res, err := b.sql.ExecContext(ctx, "DELETE FROM line_items")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
