package dataset

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite"

	"rankidx/pkg/common"
)

// Store keeps named sorted key arrays in a sqlite file so benchmark runs
// can reuse identical datasets across processes and machines.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	query := `
	CREATE TABLE IF NOT EXISTS datasets (
		name TEXT    NOT NULL,
		pos  INTEGER NOT NULL,
		key  INTEGER NOT NULL,
		PRIMARY KEY (name, pos)
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, err
	}

	// Journal tuning is best effort; the store works without it.
	db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
	`)

	return &Store{db: db}, nil
}

// Save replaces the named dataset with keys, positions preserved.
func (s *Store) Save(name string, keys []common.KeyType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM datasets WHERE name = ?", name); err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO datasets (name, pos, key) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, key := range keys {
		if _, err := stmt.Exec(name, i, int64(key)); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Load returns the named dataset in position order; a missing name yields
// an empty slice and no error.
func (s *Store) Load(name string) ([]common.KeyType, error) {
	rows, err := s.db.Query("SELECT key FROM datasets WHERE name = ? ORDER BY pos ASC", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []common.KeyType
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, common.KeyType(k))
	}
	return keys, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
