package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/transcripta/capsearch/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Load scraper output into the caption database",
	Long: `Ingest caption files into the database. Each path may be a scraper
JSON document, an SRT file, or a directory that is walked for both.
Re-ingesting a video replaces its previous caption track.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestWorkers int

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "Parse workers (default: number of CPUs)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ing := ingest.New(store)
	ingestCfg := &ingest.Config{Workers: ingestWorkers}

	total := ingest.Statistics{}
	ctx := context.Background()
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", path, err)
		}

		var stats *ingest.Statistics
		if info.IsDir() {
			stats, err = ing.IngestDir(ctx, path, ingestCfg)
		} else {
			stats, err = ing.IngestFiles(ctx, []string{path}, ingestCfg)
		}
		if err != nil {
			return fmt.Errorf("ingest of %s failed: %w", path, err)
		}

		total.VideosIngested += stats.VideosIngested
		total.VideosFailed += stats.VideosFailed
		total.SegmentsStored += stats.SegmentsStored
		total.ErrorMessages = append(total.ErrorMessages, stats.ErrorMessages...)
	}

	for _, msg := range total.ErrorMessages {
		log.Printf("ingest error: %s", msg)
	}
	fmt.Printf("Ingested %d videos (%d segments), %d failed\n",
		total.VideosIngested, total.SegmentsStored, total.VideosFailed)
	return nil
}
