// Command migrate manages the roombook database schema.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/roombook/backend/internal/infrastructure/config"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

type cli struct {
	migrationsPath string
	logLevel       string
	log            *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Roombook database migration tool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(logger.Config{Level: c.logLevel, Format: "console", Output: "stdout"})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			c.log = log
			c.migrationsPath, err = resolveMigrationsPath(c.migrationsPath)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.migrationsPath, "path", "", "path to the migrations directory (default ./migrations)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.createCmd(),
		c.listCmd(),
		c.withMigrator("up", "Apply all pending migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Up()
		}),
		c.withMigrator("down", "Roll back all migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Down()
		}),
		c.withMigrator("step <n>", "Apply n migrations (negative rolls back)", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		c.withMigrator("goto <version>", "Migrate to a specific version", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		}),
		c.withMigrator("version", "Show the applied version", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if v == 0 {
				c.log.Info("No migrations applied")
				return nil
			}
			c.log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		}),
		c.withMigrator("force <version>", "Set the version without running migrations", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		}),
		c.dropCmd(),
	)
	return root
}

func (c *cli) createCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mf, err := migration.CreateMigration(c.migrationsPath, args[0], description, time.Now())
			if err != nil {
				return err
			}
			c.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description written into the file header")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var applied uint
			if !offline {
				err := c.run(func(m *migration.Migrator) error {
					v, _, err := m.Version()
					applied = v
					return err
				})
				if err != nil {
					return err
				}
			}
			entries, err := migration.ListMigrations(c.migrationsPath, applied)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				mark := " "
				if e.Applied {
					mark = "x"
				}
				fmt.Fprintf(out, "[%s] %d %s\n", mark, e.Version, e.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "do not connect to the database")
	return cmd
}

func (c *cli) dropCmd() *cobra.Command {
	var confirm bool
	cmd := c.withMigrator("drop", "Drop every object in the database", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
		if !confirm {
			return errors.New("refusing to drop without --confirm")
		}
		return m.Drop()
	})
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm that all data will be lost")
	return cmd
}

func (c *cli) withMigrator(use, short string, args cobra.PositionalArgs, fn func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, a []string) error {
			return c.run(func(m *migration.Migrator) error { return fn(m, a) })
		},
	}
}

// run opens the database from config and hands a Migrator to fn
func (c *cli) run(fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, c.migrationsPath, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			c.log.Warn("Failed to close migrator", zap.Error(cerr))
		}
	}()
	return fn(m)
}

// resolveMigrationsPath prefers an explicit path, then ./migrations, then the
// directory two levels above the executable.
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
