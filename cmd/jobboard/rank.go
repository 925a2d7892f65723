package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/observability"
	"github.com/jonathan/jobboard/internal/ranking"
	"github.com/jonathan/jobboard/internal/schemas"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank internship listings against a query",
	Long: `Rank a JSON array of internship listings against a free-text query and
print them best first. Without --listings the sample listings are ranked.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringP("listings", "l", "", "Path to a JSON file with an array of listings")
	rankCmd.Flags().StringP("query", "q", "", "Free-text query, e.g. \"python remote\"")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("listings")
	query, _ := cmd.Flags().GetString("query")

	listings, err := loadListings(path)
	if err != nil {
		return err
	}

	ranker, err := ranking.NewRanker()
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}
	ranked := ranker.Rank(query, listings)

	if v.GetBool("json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRanked(query, ranked)
	return nil
}

// loadListings reads and validates a listings file, or returns the sample listings for "".
func loadListings(path string) ([]types.JobRecord, error) {
	if path == "" {
		return db.SeedInternships(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}
	listings, err := schemas.LoadListings(data)
	if err != nil {
		return nil, fmt.Errorf("invalid listings file %s: %w", path, err)
	}
	return listings, nil
}
