// Command migrate applies the SQL files in migrations/ with the Atlas CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"affiliate-notify/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const migrateTimeout = 2 * time.Minute

var dirURL string

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dirURL, "dir", "file://migrations", "Migration directory URL")
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE:  func(cmd *cobra.Command, _ []string) error { return runApply(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version and pending files",
			RunE:  func(cmd *cobra.Command, _ []string) error { return runStatus(cmd.Context()) },
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newClient() (*atlasexec.Client, string, error) {
	var db config.DBConfig
	if err := config.LoadDB(&db); err != nil {
		return nil, "", err
	}
	client, err := atlasexec.NewClient(".", "atlas")
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize atlas client: %w", err)
	}
	return client, db.BuildDSN(), nil
}

func runApply(ctx context.Context) error {
	client, url, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		URL:    url,
		DirURL: dirURL,
	})
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	slog.Info("migrations applied", "applied", len(res.Applied), "current", res.Current, "target", res.Target)
	return nil
}

func runStatus(ctx context.Context) error {
	client, url, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	res, err := client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{
		URL:    url,
		DirURL: dirURL,
	})
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	slog.Info("migration status", "status", res.Status, "current", res.Current, "next", res.Next, "pending", len(res.Pending))
	return nil
}
