package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

/*
The catalog is the registry of plans a mohair server knows about. Each entry
records a plan's key, the name it was submitted under, its rendered mohair
plan and the sources it reads. Plan messages themselves live in the storage
provider; the catalog is what makes those objects discoverable.
*/

////////////////////////////////////////////////////////////////////////////////

const schemaVersion = 1

// Entry is a catalog record.
type Entry struct {
	Hash      string    `json:"hash"`
	Name      string    `json:"name"`
	Root      string    `json:"root"`
	Sources   []string  `json:"sources"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Catalog is a sqlite-backed plan registry.
type Catalog struct {
	db    *sql.DB
	owned bool
	now   func() time.Time
}

// Open opens or creates the catalog database at path.
func Open(ctx context.Context, path string) (*Catalog, error) {
	dsn := path + "?_journal=WAL&mode=rwc&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog database at %s: %w", path, err)
	}
	c, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

// New returns a catalog over an existing database handle, applying any
// outstanding migrations. The caller retains ownership of db.
func New(ctx context.Context, db *sql.DB) (*Catalog, error) {
	c := &Catalog{db: db, now: time.Now}
	if err := c.initialize(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) initialize(ctx context.Context) error {
	var maxApplied int64
	err := c.db.QueryRowContext(ctx, "select max(version) from schema_migrations").Scan(&maxApplied)
	if err == nil && maxApplied >= schemaVersion {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, `
	create table if not exists plans (
		hash text primary key,
		name text not null,
		root text not null,
		sources text not null,
		size bigint not null,
		created_at bigint not null
	);

	create index if not exists plans_created_at on plans(created_at);

	create table if not exists schema_migrations(
		version bigint not null,
		timestamp text not null default current_timestamp
	);

	insert into schema_migrations(version) values (1);
	`); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Put records an entry. An existing entry with the same hash is updated in
// place and keeps its original creation time.
func (c *Catalog) Put(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Hash == "" {
		return Entry{}, errors.New("catalog entry requires a hash")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}
	sources, err := json.Marshal(entry.Sources)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode sources: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
	insert into plans (hash, name, root, sources, size, created_at) values ($1, $2, $3, $4, $5, $6)
	on conflict(hash) do update set
		name = excluded.name,
		root = excluded.root,
		sources = excluded.sources,
		size = excluded.size`,
		entry.Hash, entry.Name, entry.Root, string(sources), entry.Size, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to store catalog entry: %w", err)
	}
	return c.Get(ctx, entry.Hash)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var entry Entry
	var sources string
	var created int64
	if err := row.Scan(&entry.Hash, &entry.Name, &entry.Root, &sources, &entry.Size, &created); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(sources), &entry.Sources); err != nil {
		return Entry{}, fmt.Errorf("failed to decode sources: %w", err)
	}
	entry.CreatedAt = time.Unix(0, created).UTC()
	return entry, nil
}

// Get returns the entry for hash.
func (c *Catalog) Get(ctx context.Context, hash string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `
	select hash, name, root, sources, size, created_at from plans where hash = $1`, hash)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, NewPlanNotFoundError(hash)
		}
		return Entry{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	return entry, nil
}

// List returns all entries created at or after since, oldest first. A zero
// since lists everything.
func (c *Catalog) List(ctx context.Context, since time.Time) ([]Entry, error) {
	var minCreated int64
	if !since.IsZero() {
		minCreated = since.UnixNano()
	}
	rows, err := c.db.QueryContext(ctx, `
	select hash, name, root, sources, size, created_at from plans
	where created_at >= $1
	order by created_at, hash`, minCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return entries, nil
}

// Delete removes the entry for hash.
func (c *Catalog) Delete(ctx context.Context, hash string) error {
	result, err := c.db.ExecContext(ctx, "delete from plans where hash = $1", hash)
	if err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	if n == 0 {
		return NewPlanNotFoundError(hash)
	}
	return nil
}

// Ping checks that the catalog database is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database if the catalog opened it.
func (c *Catalog) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

func (c *Catalog) String() string {
	return fmt.Sprintf("sqlite catalog (schema v%d)", schemaVersion)
}
