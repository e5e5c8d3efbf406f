package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlefevre/consoscope/internal/session"
	"github.com/mlefevre/consoscope/internal/source"
	"github.com/mlefevre/consoscope/internal/stats"
	"github.com/mlefevre/consoscope/pkg/models"
)

var (
	statsTag       string
	statsFile      string
	statsThreshold float64
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute statistics over stored consumption data",
	Long: `Computes min, max, and mean over the consumption values of a stored
dataset, plus threshold counts when --threshold is given. A record
exactly equal to the threshold counts as neither above nor below.

With --file the statistics are computed directly from a local file
without touching the database.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsTag, "tag", "odre", "Source tag to analyze")
	statsCmd.Flags().StringVar(&statsFile, "file", "", "Compute from a local file instead of the database")
	statsCmd.Flags().Float64Var(&statsThreshold, "threshold", 0, "Threshold for above/below counts")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dataset, err := statsDataset()
	if err != nil {
		return err
	}

	summary, err := stats.Summarize(dataset)
	if err != nil {
		if errors.Is(err, stats.ErrEmptyDataset) {
			return fmt.Errorf("no data loaded: fetch a dataset first")
		}
		return fmt.Errorf("computing statistics: %w", err)
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Records:    %d\n", summary.Count)
	fmt.Printf("Date range: %s to %s\n", summary.From.Format("2006-01-02"), summary.To.Format("2006-01-02"))
	fmt.Printf("Min:        %.2f\n", summary.Min)
	fmt.Printf("Max:        %.2f\n", summary.Max)
	fmt.Printf("Mean:       %.2f\n", summary.Mean)

	if cmd.Flags().Changed("threshold") {
		above := stats.CountAbove(dataset, statsThreshold)
		below := stats.CountBelow(dataset, statsThreshold)
		fmt.Println("----------------------------------------")
		fmt.Printf("Above %.2f: %d records\n", statsThreshold, above)
		fmt.Printf("Below %.2f: %d records\n", statsThreshold, below)
		fmt.Printf("Equal:      %d records\n", summary.Count-above-below)
	}
	fmt.Println("----------------------------------------")

	return nil
}

// statsDataset loads the dataset to analyze, either from a local file
// via a throwaway session or from the database
func statsDataset() (models.Dataset, error) {
	if statsFile != "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		sess := session.New(cfg)
		dropped, err := sess.Acquire(context.Background(), source.ModeLocal, statsFile)
		if err != nil {
			return nil, fmt.Errorf("acquiring dataset: %w", err)
		}
		if dropped > 0 {
			fmt.Printf("⚠ Dropped %d malformed or duplicate rows during normalization\n", dropped)
		}
		return sess.Dataset(), nil
	}

	db, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	dataset, err := db.ListRecords(statsTag)
	if err != nil {
		return nil, fmt.Errorf("listing data for %s: %w", statsTag, err)
	}
	return dataset, nil
}
