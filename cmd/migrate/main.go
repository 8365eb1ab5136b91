package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"github.com/marketplace/portal/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	migrationsPath, err = resolveMigrationsPath(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	// create and list work on files only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		pair, err := migration.Create(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", pair.Version),
			zap.String("up_file", pair.UpPath),
			zap.String("down_file", pair.DownPath),
		)
		return
	case "list":
		names, err := migration.List(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("Migrations only run against postgres; sqlite schemas are created by the server",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		n, convErr := strconv.Atoi(arg(args, 1))
		if convErr != nil {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		err = m.Steps(n)
	case "goto":
		version, convErr := strconv.ParseUint(arg(args, 1), 10, 64)
		if convErr != nil {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		err = m.GoTo(uint(version))
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			log.Fatal("Failed to get version", zap.Error(verErr))
		}
		if version == 0 {
			log.Info("No migrations applied")
			return
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case "force":
		version, convErr := strconv.Atoi(arg(args, 1))
		if convErr != nil {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		err = m.Force(version)
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// resolveMigrationsPath falls back to ./migrations, then to the directory
// two levels above the binary
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}

func printUsage() {
	fmt.Println(`Portal database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  PORTAL_DATABASE_HOST, PORTAL_DATABASE_PORT, PORTAL_DATABASE_USER,
  PORTAL_DATABASE_PASSWORD, PORTAL_DATABASE_DBNAME, PORTAL_DATABASE_SSLMODE`)
}
