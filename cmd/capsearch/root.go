package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/transcripta/capsearch/internal/config"
	"github.com/transcripta/capsearch/internal/rank"
	"github.com/transcripta/capsearch/internal/search"
	"github.com/transcripta/capsearch/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "capsearch",
		Short: "Caption search engine for video transcript archives",
		Long: `Capsearch indexes timestamped video captions in SQLite and answers
natural language queries with a multi-strategy full-text search pipeline:
date directives, proximity and exclusion operators, synonym expansion,
relevance ranking and deep links back into the videos.`,
		Version: fmt.Sprintf("%s (built %s, %s, driver %s)",
			version, buildTime, storage.BuildMode, storage.DriverName),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.capsearch.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the caption database")

	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".capsearch")
	}

	viper.SetEnvPrefix("CAPSEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the merged configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the caption database named by the configuration
func openStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

// searchConfig converts the file configuration into engine settings,
// loading the optional boost and hint tables.
func searchConfig(cfg *config.Config) (search.Config, error) {
	boosts, err := rank.LoadBoosts(cfg.Search.BoostsFile)
	if err != nil {
		return search.Config{}, fmt.Errorf("failed to load boosts: %w", err)
	}
	hints, err := search.LoadHints(cfg.Search.HintsFile)
	if err != nil {
		return search.Config{}, fmt.Errorf("failed to load hints: %w", err)
	}

	return search.Config{
		PerStrategyLimit: cfg.Search.PerStrategyLimit,
		Budget:           cfg.Search.Budget,
		DistinctVideos:   cfg.Search.DistinctVideos,
		CacheSize:        cfg.Search.CacheSize,
		CacheTTL:         cfg.Search.CacheTTL,
		Platform:         cfg.Search.Platform,
		Boosts:           boosts,
		Hints:            hints,
	}, nil
}
