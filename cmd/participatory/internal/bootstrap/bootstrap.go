package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	participatory "github.com/goliatone/go-participatory"
)

// Options configures the CLI runtime.
type Options struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
}

// Module bundles the wired runtime the CLI commands operate on.
type Module struct {
	*participatory.Module
	DB *bun.DB
}

// BuildModule opens the sqlite database, applies migrations, and wires the
// participatory module on top of it.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	db, err := OpenDatabase(opts.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	cfg := participatory.DefaultConfig()
	if opts.LogLevel != "" || opts.LogFormat != "" {
		cfg.Logging = participatory.LoggingConfig{
			Provider: "gologger",
			Level:    opts.LogLevel,
			Format:   opts.LogFormat,
		}
	}

	module, err := participatory.New(cfg, participatory.WithDB(db))
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Module{Module: module, DB: db}, nil
}

// OpenDatabase opens (or creates) the sqlite database at path.
func OpenDatabase(path string) (*bun.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = "participatory.db"
	}
	sqldb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_fk=1", path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// RunMigrations executes the embedded up migrations in lexical order.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	migrations := participatory.GetMigrationsFS()

	var files []string
	if err := fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".up.sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := fs.ReadFile(migrations, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// ParseUUID parses an optional UUID flag; empty input maps to uuid.Nil.
func ParseUUID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}
