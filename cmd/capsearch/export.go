package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transcripta/capsearch/internal/result"
	"github.com/transcripta/capsearch/internal/search"
)

var exportCmd = &cobra.Command{
	Use:   "export <query>",
	Short: "Search and write the results to a file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExport,
}

var (
	exportFormat string
	exportOut    string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", result.FormatCSV, "Output format (csv, plain, json)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	searchCfg, err := searchConfig(cfg)
	if err != nil {
		return err
	}
	engine, err := search.NewEngine(store, searchCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize search engine: %w", err)
	}

	resp := engine.Search(context.Background(), strings.Join(args, " "), nil)

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return result.Export(out, resp, exportFormat)
}
