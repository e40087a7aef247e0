package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	DB        string `name:"db" help:"SQLite database path or PostgreSQL connection string. PostgreSQL passwords must come from the keyring, HABITLIT_DB_CONNECTION or .pgpass." type:"string" default:""`
	User      string `help:"Profile to act on (overrides the configured user)." default:""`
	ConfigDir string `name:"config-dir" help:"Directory holding config.yaml and logs." type:"path" default:""`
	Debug     bool   `help:"Enable debug logging to stderr."`

	Init      cli.InitCmd      `cmd:"" help:"Initialize habitlit storage."`
	Migrate   cli.MigrateCmd   `cmd:"" help:"Run database migrations."`
	Tui       cli.TuiCmd       `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Habit     cli.HabitCmd     `cmd:"" help:"Manage habits."`
	Complete  cli.CompleteCmd  `cmd:"" help:"Record a habit completion."`
	Undo      cli.UndoCmd      `cmd:"" help:"Remove a habit completion."`
	Streak    cli.StreakCmd    `cmd:"" help:"Show habit streaks."`
	Level     cli.LevelCmd     `cmd:"" help:"Show your level and XP."`
	Badges    cli.BadgesCmd    `cmd:"" help:"Show badges and progress."`
	Stats     cli.StatsCmd     `cmd:"" help:"Show completion statistics."`
	XP        cli.XPCmd        `cmd:"" name:"xp" help:"Manage XP."`
	Reconcile cli.ReconcileCmd `cmd:"" help:"Repair rewards left pending by failed writes."`
	Settings  cli.SettingsCmd  `cmd:"" help:"Manage application settings."`
	Keyring   cli.KeyringCmd   `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Backup    cli.BackupCmd    `cmd:"" help:"Manage database backups."`
	Serve     cli.ServeCmd     `cmd:"" help:"Serve the HTTP API."`
}

// commands that manage the store themselves
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified habit tracker with streaks, XP, levels and badges"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	store, err := cli.OpenStore(CLI.DB)
	if err != nil {
		apperrors.Fatal(err)
	}

	configDir := CLI.ConfigDir
	if configDir == "" {
		configDir = config.Dir(store.GetConfigPath())
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.User != "" {
		cfg.User = CLI.User
	}

	// top-level command name, e.g. "keyring" for "keyring set <conn>"
	selected := ""
	if fields := strings.Fields(ctx.Command()); len(fields) > 0 {
		selected = fields[0]
	}

	logCloser, err := logger.Init(logger.Config{
		Level:     cfg.Log.Level,
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    selected == "serve",
		JSON:      cfg.Log.JSON,
	})
	if err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}
	defer logCloser.Close()
	logger.Debug("Starting", "command", ctx.Command(), "store", store.GetConfigPath())

	appCtx := cli.NewContext(store, cfg, utils.RealClock{})

	if !skipLoad[selected] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}
	defer store.Close()

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}
