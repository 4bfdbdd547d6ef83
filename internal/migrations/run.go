// Package migrations применяет схему MongoDB (индексы) при старте сервиса.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.mongodb.org/mongo-driver/mongo"
)

//go:embed files/*.json
var files embed.FS

// Run применяет все невыполненные миграции к базе database.
func Run(client *mongo.Client, database string) error {
	const op = "migrations.Run"

	src, err := iofs.New(files, "files")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	driver, err := mongodb.WithInstance(client, &mongodb.Config{
		DatabaseName:         database,
		MigrationsCollection: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, database, driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
