// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fol-reasoner CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/fol-reasoner/internal/httputil"
	"github.com/pdiddy/fol-reasoner/internal/kbfile"
	"github.com/pdiddy/fol-reasoner/internal/logging"
	"github.com/pdiddy/fol-reasoner/internal/store"
	"github.com/pdiddy/fol-reasoner/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the effective configuration: defaults, then the config file,
	// then FOL_REASONER_* variables, then flags.
	cfg types.Config

	logger = zap.NewNop()
)

// rootCmd is the base command for the fol-reasoner CLI.
var rootCmd = &cobra.Command{
	Use:   "fol-reasoner",
	Short: "Answer queries over Horn-clause knowledge bases",
	Long: `fol-reasoner proves goals against knowledge bases of facts and rules by
backward chaining. Knowledge bases are clause-notation files (.fol, .pl),
YAML or JSON documents, remote URLs, or entries in the local store.

  fol-reasoner query --kb rooms.fol 'NeedsCooling(X)?'
  fol-reasoner kb ingest ./kb
  fol-reasoner query --store rooms 'Room(R)'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			c.Logging.Level = "debug"
		}
		if f := cmd.Flags().Lookup("trace"); f != nil && f.Changed {
			c.Logging.Level = "debug"
		}
		cfg = c

		l, err := logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./fol-reasoner.yaml or ~/.config/fol-reasoner/fol-reasoner.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().String("store-dir", "", "directory holding the clause store database")

	viper.BindPFlag("logging.json", rootCmd.PersistentFlags().Lookup("log-json"))
	viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fol-reasoner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fol-reasoner"))
		}
	}

	viper.SetEnvPrefix("FOL_REASONER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with viper so that environment
// variables reach Unmarshal.
func setDefaults(d types.Config) {
	viper.SetDefault("engine.max_depth", d.Engine.MaxDepth)
	viper.SetDefault("engine.step_limit", d.Engine.StepLimit)
	viper.SetDefault("engine.distinct", d.Engine.Distinct)
	viper.SetDefault("engine.max_answers", d.Engine.MaxAnswers)
	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("store.cache_size", d.Store.CacheSize)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.json", d.Logging.JSON)
	viper.SetDefault("fetch.timeout", d.Fetch.Timeout)
	viper.SetDefault("fetch.max_retries", d.Fetch.MaxRetries)
	viper.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
}

func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}
	return c, nil
}

// newLoader builds a knowledge base loader from the fetch settings.
func newLoader() *kbfile.Loader {
	return &kbfile.Loader{
		Fetcher: &httputil.Fetcher{
			Client:     &http.Client{Timeout: cfg.Fetch.Timeout},
			MaxRetries: cfg.Fetch.MaxRetries,
			UserAgent:  cfg.Fetch.UserAgent,
			Logger:     logger,
		},
		Logger: logger,
	}
}

// openStore opens the clause store named by the store settings.
func openStore() (*store.Store, error) {
	return store.NewStore(cfg.Store)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
