// Command migrate applies the Postgres migrations by hand.
//
//	migrate -action up
//	migrate -action to -version 1
//	migrate -action version
package main

import (
	"flag"
	"fmt"
	"os"

	"charity-events/internal/config"
	"charity-events/internal/database"
	"charity-events/internal/database/migrations"
	"charity-events/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	action := flag.String("action", "up", "up, down, to, version or auto")
	version := flag.Uint("version", 0, "target version for -action to")
	dir := flag.String("dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
	seed := flag.Bool("seed", true, "include seed migrations for -action auto")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewWithWriter(os.Stdout)

	if cfg.Database.Driver != database.DriverPostgres {
		log.Fatal("MIGRATE", fmt.Sprintf("migrations need DB_DRIVER=postgres, got %q", cfg.Database.Driver))
	}
	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	runner := migrations.NewRunner(cfg.Database.DSN, migrations.MigrateOptions{MigrationsDir: *dir, SeedData: *seed}, log)
	defer runner.Close()

	var err error
	switch *action {
	case "up":
		err = runner.MigrateUp()
	case "down":
		err = runner.MigrateDown()
	case "to":
		err = runner.MigrateTo(*version)
	case "auto":
		err = runner.RunMigrations()
	case "version":
	default:
		log.Fatal("MIGRATE", fmt.Sprintf("unknown action %q", *action))
	}
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}

	current, err := runner.Version()
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("Schema version: %d", current))
}
