/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sqlite.go
Description: SQLite storage for breakpoint tables. Lets large guideline
tables be shipped as a single database file and loaded once at startup.
*/

package breakpoints

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS breakpoints (
	antibiotic  TEXT NOT NULL,
	organism    TEXT NOT NULL,
	susceptible REAL,
	resistant   REAL,
	ecoff       REAL,
	source      TEXT NOT NULL,
	PRIMARY KEY (antibiotic, organism, source)
);
CREATE TABLE IF NOT EXISTS organism_groups (
	organism TEXT NOT NULL,
	grp      TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (organism, grp)
);`

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// LoadSQLite reads a breakpoint table from a SQLite database
func LoadSQLite(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("breakpoint database: %w", err)
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT antibiotic, organism, susceptible, resistant, ecoff, source
		FROM breakpoints ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query breakpoints: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var s, r, ecoff sql.NullFloat64
		var source string
		if err := rows.Scan(&e.Antibiotic, &e.Organism, &s, &r, &ecoff, &source); err != nil {
			return nil, fmt.Errorf("scan breakpoint: %w", err)
		}
		e.Susceptible, e.Resistant, e.ECOFF = s.Float64, r.Float64, ecoff.Float64
		e.Source = Source(source)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate breakpoints: %w", err)
	}

	groups, err := loadGroups(db)
	if err != nil {
		return nil, err
	}

	return NewTable(entries, groups)
}

func loadGroups(db *sql.DB) (map[string][]string, error) {
	rows, err := db.Query(`SELECT organism, grp FROM organism_groups ORDER BY organism, position`)
	if err != nil {
		return nil, fmt.Errorf("query organism groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[string][]string)
	for rows.Next() {
		var organism, grp string
		if err := rows.Scan(&organism, &grp); err != nil {
			return nil, fmt.Errorf("scan organism group: %w", err)
		}
		groups[organism] = append(groups[organism], grp)
	}
	return groups, rows.Err()
}

// SaveSQLite writes a table into a SQLite database, replacing existing rows.
// The parent directory is created if needed.
func SaveSQLite(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create breakpoint dir: %w", err)
	}

	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM breakpoints`); err != nil {
		return fmt.Errorf("clear breakpoints: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM organism_groups`); err != nil {
		return fmt.Errorf("clear organism groups: %w", err)
	}

	for _, e := range t.Entries() {
		_, err := tx.Exec(`INSERT INTO breakpoints (antibiotic, organism, susceptible, resistant, ecoff, source)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.Antibiotic, e.Organism, nullable(e.Susceptible), nullable(e.Resistant), nullable(e.ECOFF), string(e.Source))
		if err != nil {
			return fmt.Errorf("insert breakpoint %s/%s: %w", e.Antibiotic, e.Organism, err)
		}
	}

	for organism, gs := range t.Groups() {
		for position, g := range gs {
			if _, err := tx.Exec(`INSERT INTO organism_groups (organism, grp, position) VALUES (?, ?, ?)`,
				organism, g, position); err != nil {
				return fmt.Errorf("insert organism group %s: %w", organism, err)
			}
		}
	}

	return tx.Commit()
}

func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v > 0}
}
