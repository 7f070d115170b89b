package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ignite/kcheck/internal/config"
	"github.com/ignite/kcheck/internal/llm"
	"github.com/ignite/kcheck/internal/logger"
	"github.com/ignite/kcheck/internal/oracle"
	"github.com/ignite/kcheck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "kcheck",
	Short: "Adaptive knowledge checks for course lessons",
	Long: "kcheck runs a short conversational knowledge check at the end of a lesson: " +
		"questions are written for the lesson, free-text answers are marked, and the result is recorded.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./kcheck.yaml or ~/.config/kcheck/kcheck.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides KCHECK_DB_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindings maps config keys to the flags that override them.
type bindings map[string]string

// loadConfig builds the configuration for cmd. Flags named in b win over
// environment and file values.
func loadConfig(cmd *cobra.Command, b bindings) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	v, err := config.New(file)
	if err != nil {
		return config.Config{}, err
	}

	all := bindings{"db.path": "db", "log.level": "log-level"}
	for k, f := range b {
		all[k] = f
	}
	if err := bindFlags(cmd, v, all); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

// bindFlags binds only flags the user actually set, so an empty default
// never masks a config value.
func bindFlags(cmd *cobra.Command, v *viper.Viper, b bindings) error {
	for key, name := range b {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// openStore opens the configured database, or the default one.
func openStore(cfg config.Config) (*store.Store, error) {
	path := cfg.DB.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, err
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newLogger builds the file logger, flushing on close.
func newLogger(cfg logger.Config) (*zap.Logger, func(), error) {
	log, closeLog, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return log, func() { _ = closeLog() }, nil
}

// newLLMOracle builds the in-process Oracle on the configured provider.
func newLLMOracle(cmd *cobra.Command, cfg config.Config, events store.EventRepo, log *zap.Logger) (oracle.Oracle, error) {
	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, events, log.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return oracle.NewLLMOracle(provider, oracle.DefaultLLMConfig()), nil
}

// newOracle returns the Oracle selected by oracle.mode.
func newOracle(cmd *cobra.Command, cfg config.Config, events store.EventRepo, log *zap.Logger) (oracle.Oracle, error) {
	if cfg.Oracle.Mode == config.OracleLLM {
		return newLLMOracle(cmd, cfg, events, log)
	}
	return oracle.NewHTTPClient(cfg.Oracle.URL, cfg.Oracle.Timeout), nil
}
