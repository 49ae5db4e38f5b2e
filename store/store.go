// Package store archives site density profiles of simulation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableDensity = "density"

	opTimeout = 3 * time.Second
)

type Store struct {
	Path string

	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	s := &Store{Path: dbPath}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	s.db = db
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put records the density profile of one time step.
func (s *Store) Put(step int, t float64, charge, spin []float64) error {
	if len(charge) != len(spin) {
		return errors.Errorf("%d %d", len(charge), len(spin))
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (step, site, t, charge, spin) VALUES (?, ?, ?, ?, ?)`, tableDensity)
	for site, c := range charge {
		if _, err := s.db.ExecContext(ctx, sqlStr, step, site, t, c, spin[site]); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%d %d", step, site))
		}
	}
	return nil
}

type Density struct {
	Step   int
	Site   int
	T      float64
	Charge float64
	Spin   float64
}

// Densities returns all recorded profiles ordered by step and site.
func (s *Store) Densities() ([]Density, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT step, site, t, charge, spin FROM %s ORDER BY step, site`, tableDensity)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	ds := make([]Density, 0)
	for rows.Next() {
		var d Density
		if err := rows.Scan(&d.Step, &d.Site, &d.T, &d.Charge, &d.Spin); err != nil {
			return nil, errors.Wrap(err, "")
		}
		ds = append(ds, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return ds, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (step INTEGER, site INTEGER, t REAL, charge REAL, spin REAL, PRIMARY KEY (step, site)) STRICT`, tableDensity)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
