package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	notetable "github.com/unowned-ai/notetable/pkg"
	"github.com/unowned-ai/notetable/pkg/config"
	pkgdb "github.com/unowned-ai/notetable/pkg/db"
	"github.com/unowned-ai/notetable/pkg/logging"
	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/storage"
	"github.com/unowned-ai/notetable/pkg/tables"
	"github.com/unowned-ai/notetable/pkg/utils"
)

var (
	dbPath     string
	configPath string
	walFlag    bool
	syncFlag   string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:     "notetable",
	Short:   "Categorized notes with an archive, a statistics table and an MCP server.",
	Version: fmt.Sprintf("v%s", notetable.Version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			loaded.DBPath = dbPath
		}
		if cmd.Flags().Changed("wal") {
			loaded.WAL = walFlag
		}
		if cmd.Flags().Changed("sync") {
			loaded.Sync = strings.ToUpper(syncFlag)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		// The TUI owns the terminal and the MCP server owns stdout.
		logFile := ""
		if cmd.Name() == "tui" {
			logFile = cfg.LogFile
		}
		l, err := logging.New(logging.Options{Level: cfg.LogLevel, Verbose: verbose, File: logFile})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for notetable.

Examples:

  Bash (current shell):
    $ source <(notetable completion bash)

  Zsh:
    $ notetable completion zsh > "${fpath[1]}/_notetable"

  Fish:
    $ notetable completion fish > ~/.config/fish/completions/notetable.fish

  PowerShell:
    PS> notetable completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notetable",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), notetable.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the notetable database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the notesdb schema to the latest version",
	Long: `Connects to the SQLite database and applies any schema migrations needed to
bring the notesdb component up to the current version. A missing database is
created and initialized.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Upgrading notesdb in %s (WAL: %t, Sync: %s)\n", path, cfg.WAL, cfg.Sync)

		conn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync)
		if err != nil {
			return err
		}
		defer conn.Close()

		return pkgdb.UpgradeDB(conn, path, pkgdb.TargetSchemaVersion, logger)
	},
}

// session is an opened database with a loaded store and an initialized controller.
type session struct {
	db   *sql.DB
	path string
	ctrl *tables.Controller
}

func (s *session) Close() error { return s.db.Close() }

func openSession(ctx context.Context) (*session, error) {
	path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	conn, err := pkgdb.Open(path, cfg.WAL, cfg.Sync, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := notes.NewStore(storage.NewLocalStorage(conn),
		notes.WithStorageKey(cfg.StorageKey),
		notes.WithLogger(logger),
	)
	if err := store.Load(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	ctrl := tables.New(store, tables.WithLogger(logger))
	ctrl.Initialize()

	logger.Debug("session opened",
		zap.String("db", path),
		zap.Int("active", store.Len(notes.Active)),
		zap.Int("archived", store.Len(notes.Archived)))
	return &session{db: conn, path: path, ctrl: ctrl}, nil
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the notetable SQLite database (default: system data dir)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (default: system config dir)")
	rootCmd.PersistentFlags().BoolVar(&walFlag, "wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode.")
	rootCmd.PersistentFlags().StringVar(&syncFlag, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA).")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	dbCmd.AddCommand(dbUpgradeCmd)

	initNotesCmd()

	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, notesCmd, statsCmd, tuiCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
