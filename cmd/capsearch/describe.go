package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transcripta/capsearch/internal/vision"
)

var describeCmd = &cobra.Command{
	Use:   "describe-thumbnails",
	Short: "Extract searchable text from video thumbnails",
	Long: `Fill in thumbnail descriptions for every stored video that lacks one,
using a vision chat model. Requires OPENAI_API_KEY (or vision.api_key in
the config file); without a key the command reports what it would skip.`,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	describer := vision.New(store, cfg.Vision.APIKey, vision.Config{
		Model:   cfg.Vision.Model,
		BaseURL: cfg.Vision.BaseURL,
	})

	stats, err := describer.DescribeMissing(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Described %d thumbnails, skipped %d, failed %d\n",
		stats.Described, stats.Skipped, stats.Failed)
	return nil
}
