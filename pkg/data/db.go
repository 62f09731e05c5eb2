// Package data manages the reference cohort database: a small, static
// population sample used to sanity-check the model baseline and to
// compute population-level feature importance. The store is created on
// first run from embedded SQL and is read-only afterwards.
package data

import (
	"database/sql"
	"embed"
	"os"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DataFileName is the default cohort database file name.
const DataFileName string = "cohort.db"

//go:embed sql/*
var f embed.FS

// Init creates the cohort database with schema and seed rows when the
// file does not exist yet. Idempotent otherwise.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	if _, err := os.Stat(dbFilePath); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return errors.Wrapf(err, "error opening database: %s", dbFilePath)
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
	}
	return nil
}

// GetDB opens the cohort database.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}
