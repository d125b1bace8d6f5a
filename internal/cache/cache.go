// Package cache persists a symbolstore.Store's symbol tables to a
// bbolt database, so the CLI can skip reparsing an unchanged project on
// the next invocation. It is the one piece of the core's external
// collaborators spec.md §1 calls "on-disk caching of symbol tables":
// the core itself never touches disk.
package cache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/tidesmith/symbolcore/pkg/symbol"
)

var (
	bucketTables = []byte("symbol_tables")
	bucketMeta   = []byte("meta")

	keySchemaVersion = []byte("schema_version")
	keySnapshotID    = []byte("snapshot_id")
)

// SchemaVersion is the current on-disk layout version. Bump it and add
// a migration below whenever the bucket layout changes.
const SchemaVersion uint64 = 1

type migration struct {
	version     uint64
	description string
	apply       func(tx *bolt.Tx) error
}

var migrations = []migration{
	{version: 1, description: "baseline symbol-table bucket", apply: func(tx *bolt.Tx) error { return nil }},
}

// Cache wraps a bbolt database holding one JSON-encoded SymbolTable per
// document URI, plus a snapshot id stamped on every full rebuild.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt database at path and
// runs any pending schema migrations.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketTables, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init buckets: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

func runMigrations(db *bolt.DB) error {
	var current uint64
	err := db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if len(data) == 8 {
			current = binary.BigEndian.Uint64(data)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("cache schema version %d is ahead of binary version %d", current, SchemaVersion)
	}
	if current == SchemaVersion {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		for _, m := range migrations {
			if m.version <= current {
				continue
			}
			if err := m.apply(tx); err != nil {
				return fmt.Errorf("migration v%d (%s): %w", m.version, m.description, err)
			}
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, SchemaVersion)
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, buf)
	})
}

// Put stores table under its own URI, overwriting any prior entry.
func (c *Cache) Put(table *symbol.SymbolTable) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", table.URI, err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTables).Put([]byte(table.URI), data)
	})
}

// Get reads back the table stored for uri, or (nil, false) if absent.
func (c *Cache) Get(uri string) (*symbol.SymbolTable, bool, error) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketTables).Get([]byte(uri)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}
	var table symbol.SymbolTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal %s: %w", uri, err)
	}
	return &table, true, nil
}

// Delete removes the entry for uri, if any.
func (c *Cache) Delete(uri string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTables).Delete([]byte(uri))
	})
}

// All loads every stored SymbolTable, in no particular order.
func (c *Cache) All() ([]*symbol.SymbolTable, error) {
	var out []*symbol.SymbolTable
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTables).ForEach(func(_, v []byte) error {
			var table symbol.SymbolTable
			if err := json.Unmarshal(v, &table); err != nil {
				return err
			}
			out = append(out, &table)
			return nil
		})
	})
	return out, err
}

// Stamp records a fresh ULID-based snapshot id for the current cache
// contents, for CLI status reporting, and returns it.
func (c *Cache) Stamp(entropy *ulid.MonotonicEntropy) (string, error) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySnapshotID, []byte(id))
	})
	return id, err
}

// SnapshotID returns the most recently stamped snapshot id, or "" if
// none has been stamped yet.
func (c *Cache) SnapshotID() (string, error) {
	var id string
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keySnapshotID); v != nil {
			id = string(v)
		}
		return nil
	})
	return id, err
}
