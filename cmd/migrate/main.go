package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/migrations"
	"github.com/dealflow-studio/engine/pkg/config"
	"github.com/dealflow-studio/engine/pkg/database"
	"github.com/dealflow-studio/engine/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		databaseURL string
		timeout     time.Duration
	)

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the dealflow database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL (overrides DATABASE_URL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "connection timeout")

	open := func(cmd *cobra.Command) (*gorm.DB, *zap.Logger, error) {
		cfg := config.MustLoad()
		log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, nil, err
		}
		url := cfg.DatabaseURL
		if databaseURL != "" {
			url = databaseURL
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		db, err := database.Open(ctx, url, database.Options{Verbose: cfg.IsDevelopment()})
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		return db, log, nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Create or update all tables, indexes and foreign keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, log, err := open(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if err := migrations.Run(db); err != nil {
				log.Error("migration failed", zap.Error(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations completed")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report which tables exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := open(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return printStatus(cmd, db)
		},
	}

	root.AddCommand(up, status)
	return root
}

func printStatus(cmd *cobra.Command, db *gorm.DB) error {
	m := db.Migrator()
	missing := 0
	for _, model := range migrations.Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return err
		}
		state := "ok"
		if !m.HasTable(model) {
			state = "missing"
			missing++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", stmt.Schema.Table, state)
	}
	if missing > 0 {
		return fmt.Errorf("%d table(s) missing, run `migrate up`", missing)
	}
	return nil
}
