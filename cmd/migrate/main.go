package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/khoahotran/resume-builder/internal/config"
)

func main() {
	dir := flag.String("path", "migrations", "directory holding the migration files")
	steps := flag.Int("steps", 0, "apply N migrations (negative rolls back); 0 applies all pending")
	down := flag.Bool("down", false, "roll back every migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}
	if cfg.DB.DSN == "" {
		log.Fatalf("FATAL: DB_DSN is required")
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("FATAL: cannot create migrate instance: %v", err)
	}
	defer m.Close()

	switch {
	case *down:
		err = m.Down()
	case *steps != 0:
		err = m.Steps(*steps)
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("FATAL: migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("FATAL: cannot read schema version: %v", err)
	}
	log.Printf("schema at version %d (dirty=%t)", version, dirty)
}
