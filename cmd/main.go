package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/taherx7/Medi-connect/cmd/bootstrap"
	"github.com/taherx7/Medi-connect/internal/infrastructure/database"
	"github.com/taherx7/Medi-connect/internal/service"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "mediconnect",
		Short:        "Doctor appointment booking service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file read before the process environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(checkStorageCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.Setup(envFile, true)
			if err != nil {
				return err
			}

			app, err := bootstrap.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			app.Run()
			return nil
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver appointment reminders and purge expired blocked slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.Setup(envFile, true)
			if err != nil {
				return err
			}

			w, err := bootstrap.NewWorker(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize worker: %w", err)
			}

			return w.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	withMigrator := func(fn func(m *database.Migrator) error) error {
		cfg, log, err := bootstrap.Setup(envFile, false)
		if err != nil {
			return err
		}

		m, err := database.NewMigrator(cfg.DB, log)
		if err != nil {
			return err
		}
		defer m.Close()

		return fn(m)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				if err := m.Up(); err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				fmt.Println("Migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps %q: %w", args[0], err)
				}
				steps = n
			}
			return withMigrator(func(m *database.Migrator) error {
				if err := m.Down(steps); err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				fmt.Printf("Rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("migrate version: %w", err)
				}
				fmt.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

func checkStorageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-storage",
		Short: "Verify the photo storage account and folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.Setup(envFile, false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			status, err := service.CheckStorage(ctx, cfg.Storage, log)
			if errors.Is(err, service.ErrStorageDisabled) {
				return errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set")
			}
			if err != nil {
				return err
			}

			fmt.Println("Storage reachable")
			if status.FolderExists {
				fmt.Printf("Folder %q exists\n", status.Folder)
			} else {
				fmt.Printf("Folder %q not found, it will be created on first upload\n", status.Folder)
			}
			return nil
		},
	}
}
