package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/migration"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/utils"
)

type InitCmd struct {
	Force    bool   `help:"Back up and delete the existing SQLite database before initializing."`
	Timezone string `help:"IANA timezone that decides which calendar day is today." default:""`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Timezone != "" && !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone: %s", c.Timezone)
	}

	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	bg := context.Background()

	n, err := progression.SyncCatalog(bg, ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to sync badge catalog: %w", err)
	}
	if c.Timezone != "" {
		if err := ctx.Store.SaveSettings(bg, models.Settings{Timezone: c.Timezone}); err != nil {
			return fmt.Errorf("failed to save timezone: %w", err)
		}
	}
	if _, err := ctx.Engine.GetProfile(bg, ctx.User); err != nil {
		return err
	}

	fmt.Printf("Initialized habitlit storage at: %s\n", ctx.Store.GetConfigPath())
	fmt.Printf("Loaded %d badges for user %q\n", n, ctx.User)
	return nil
}

func (c *InitCmd) reset(ctx *Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force is only supported for SQLite storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	ctx.PerformAutomaticBackup()
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	fmt.Printf("Deleted existing database at: %s (a backup was kept in %s)\n", dbPath, filepath.Join(filepath.Dir(dbPath), constants.BackupDirName))
	return nil
}

type MigrateCmd struct {
	Status bool `help:"Only show applied and pending migrations."`
}

type migrator interface {
	Migrate(logFn func(string)) (int, error)
	MigrationStatus(ctx context.Context) (migration.Status, error)
}

func (c *MigrateCmd) Run(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}
	if c.Status {
		st, err := m.MigrationStatus(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		fmt.Printf("Schema version: %d (latest %d)\n", st.Current, st.Latest)
		for _, p := range st.Pending {
			fmt.Printf("  pending: %03d_%s\n", p.Version, p.Name)
		}
		if st.UpToDate() {
			fmt.Println("Database is up to date.")
		}
		return nil
	}

	count, err := m.Migrate(func(msg string) { fmt.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
		return nil
	}
	fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)

	if _, err := progression.SyncCatalog(context.Background(), ctx.Store); err != nil {
		return fmt.Errorf("failed to sync badge catalog: %w", err)
	}
	return nil
}
