package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/core/config"
	"devtrack.app/api/core/db/migrations"
)

const usage = `usage: migrate [up|down|status|version|redo|reset]`

func main() {
	ctx := context.Background()
	flag.Usage = func() { os.Stderr.WriteString(usage + "\n") }
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load(config.ServiceTypeMigrate)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg)

	sqlDB, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open database", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		slog.ErrorContext(ctx, "failed to set goose dialect", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "running migrations", "command", command)
	if err := goose.RunContext(ctx, command, sqlDB, ".", flag.Args()[min(1, flag.NArg()):]...); err != nil {
		slog.ErrorContext(ctx, "migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "migrations complete", "command", command)
}
