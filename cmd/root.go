package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizgen/internal/config"
	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/logger"
	"github.com/abhisek/quizgen/internal/store"
)

var (
	appConfig *config.Config
	log       = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "quizgen",
	Short: "Generate multiple-choice quizzes with an LLM",
	Long: `quizgen asks an LLM for multiple-choice quizzes and prints them as JSON.

Each quiz costs one model call. When the call fails or the answer is not a
valid quiz, the generator's worked example is printed instead.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute runs the root command. An interrupt cancels in-flight model calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default: ./quizgen.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZGEN_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-record", false, "Do not record LLM requests in the database")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mathCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env, the config file and the environment, then builds the
// logger. It runs before every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}

	appConfig = cfg
	log = l
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then QUIZGEN_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if appConfig != nil && appConfig.DBPath != "" {
		return appConfig.DBPath, store.EnsureDir(appConfig.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the event database named by the flags and config.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newProvider builds the configured provider. Requests are recorded in the
// event database unless --no-record is set; a database that cannot be opened
// is logged and skipped. The returned func releases the database.
func newProvider(cmd *cobra.Command) (llm.Provider, func(), error) {
	var (
		repo    store.EventRepo
		cleanup = func() {}
	)

	if noRecord, _ := cmd.Flags().GetBool("no-record"); !noRecord {
		s, err := openStore(cmd)
		if err != nil {
			log.Warn("LLM requests will not be recorded", zap.Error(err))
		} else {
			repo = s.EventRepo()
			cleanup = func() { _ = s.Close() }
		}
	}

	provider, err := llm.NewProvider(cmd.Context(), appConfig.LLM, repo, log)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("LLM provider: %w", err)
	}
	return provider, cleanup, nil
}
