/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package migrate

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed files/*.sql
var files embed.FS

// Up upgrades the schemas at the db.
func Up(dialect string, db *sql.DB) (int, error) {
	return doMigration(dialect, db, migrate.Up)
}

// Down downgrades the schemas at the db.
func Down(dialect string, db *sql.DB) (int, error) {
	return doMigration(dialect, db, migrate.Down)
}

// Source returns the embedded migrations.
func Source() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: files,
		Root:       "files",
	}
}

func doMigration(dialect string, db *sql.DB, dir migrate.MigrationDirection) (int, error) {
	n, err := migrate.Exec(db, dialect, Source(), dir)
	if err != nil {
		err = fmt.Errorf("failed to apply migrations : %w", err)
	}

	return n, err
}
