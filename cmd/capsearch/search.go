package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transcripta/capsearch/internal/result"
	"github.com/transcripta/capsearch/internal/search"
	"github.com/transcripta/capsearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the caption database from the command line",
	Long: `Run one search and print the results. The query supports the same
directives as the API: "before 1920", "1916-1918", NOT word, a NEAR(5) b.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchYearStart int
	searchYearEnd   int
	searchFormat    string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchYearStart, "year-start", 0, "Only match videos covering this year or later")
	searchCmd.Flags().IntVar(&searchYearEnd, "year-end", 0, "Only match videos covering this year or earlier")
	searchCmd.Flags().StringVar(&searchFormat, "format", result.FormatPlain, "Output format (plain, json, csv)")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	var filters *types.SearchFilters
	if searchYearStart > 0 || searchYearEnd > 0 {
		filters = &types.SearchFilters{YearStart: searchYearStart, YearEnd: searchYearEnd}
	}

	resp := engine.Search(context.Background(), strings.Join(args, " "), filters)
	return result.Export(os.Stdout, resp, searchFormat)
}
