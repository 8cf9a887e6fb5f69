package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := newRootCommand(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	var (
		dsn     string
		timeout time.Duration
	)
	root := &cobra.Command{
		Use:          "orders-csv",
		Short:        "Export or import the Postgres order store as CSV",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres DSN (defaults to POSTGRES_DSN)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall deadline")

	withService := func(cmd *cobra.Command, run func(ctx context.Context, svc ordersports.Service) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		if strings.TrimSpace(dsn) == "" {
			return fmt.Errorf("a Postgres DSN is required")
		}
		db, err := platformpostgres.Connect(ctx, dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		return run(ctx, ordersapp.NewService(orderspostgres.NewRepository(db)))
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every order as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc ordersports.Service) error {
				w, closeFn, err := openOutput(cmd, out)
				if err != nil {
					return err
				}
				if err := writeExport(ctx, svc, w, closeFn); err != nil {
					return err
				}
				logger.Info("orders exported", slog.String("out", out))
				return nil
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Upsert orders from a CSV file; nothing is written if any row is invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc ordersports.Service) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				result, err := svc.ImportOrders(ctx, f)
				if err != nil {
					return err
				}
				logger.Info("orders imported",
					slog.String("batchId", result.BatchID),
					slog.Int("imported", result.Imported))
				return nil
			})
		},
	}

	root.AddCommand(export, importCmd)
	return root
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// writeExport always runs closeFn; a close failure is reported unless the export already failed.
func writeExport(ctx context.Context, svc ordersports.Service, w io.Writer, closeFn func() error) (err error) {
	defer func() {
		if closeErr := closeFn(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close export output: %w", closeErr)
		}
	}()
	return svc.ExportOrders(ctx, w)
}
