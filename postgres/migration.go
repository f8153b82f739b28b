// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal request flow, either at
// initial startup or from cmd/enamel-manage.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1_tasks",
			Up: []string{
				`CREATE TABLE tasks(
					id SERIAL PRIMARY KEY,
					uuid VARCHAR(36) NOT NULL UNIQUE,
					action VARCHAR(255) NOT NULL,
					state VARCHAR(255) NOT NULL,
					request_id VARCHAR(255) NOT NULL,
					user_id VARCHAR(255) NOT NULL,
					project_id VARCHAR(255) NOT NULL,
					params TEXT NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL,
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
					ended_at TIMESTAMP WITH TIME ZONE
				)`,
				`CREATE INDEX tasks_state ON tasks(state)`,
			},
			Down: []string{
				`DROP TABLE tasks`,
			},
		},
		{
			Id: "2_task_items",
			Up: []string{
				`CREATE TABLE task_items(
					id SERIAL PRIMARY KEY,
					uuid VARCHAR(36) NOT NULL UNIQUE,
					action VARCHAR(255) NOT NULL,
					state VARCHAR(255) NOT NULL,
					task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL,
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
					ended_at TIMESTAMP WITH TIME ZONE
				)`,
				`CREATE INDEX task_items_task ON task_items(task_id)`,
			},
			Down: []string{
				`DROP TABLE task_items`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// UpgradeMax applies at most max pending migrations, or all of them
// if max is zero.  It returns the number applied.
func UpgradeMax(db *sql.DB, max int) (int, error) {
	return migrate.ExecMax(db, "postgres", migrationSource, migrate.Up, max)
}

// DowngradeMax reverts at most max applied migrations, or all of
// them if max is zero.  It returns the number reverted.
func DowngradeMax(db *sql.DB, max int) (int, error) {
	return migrate.ExecMax(db, "postgres", migrationSource, migrate.Down, max)
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}

// Version returns the ID of the most recently applied migration, or
// an empty string if the database has none.
func Version(db *sql.DB) (string, error) {
	records, err := migrate.GetMigrationRecords(db, "postgres")
	if err != nil || len(records) == 0 {
		return "", err
	}
	return records[len(records)-1].Id, nil
}

// Migrations returns the IDs of every known migration, oldest first.
func Migrations() []string {
	ids := make([]string, len(migrationSource.Migrations))
	for i, m := range migrationSource.Migrations {
		ids[i] = m.Id
	}
	return ids
}
