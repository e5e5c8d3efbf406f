package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlefevre/consoscope/internal/export"
)

var exportTag string

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export stored consumption data to a CSV file",
	Long: `Writes the stored dataset to a comma-delimited UTF-8 file with a
header row. An existing file at the path is overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTag, "tag", "odre", "Source tag to export")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	dataset, err := db.ListRecords(exportTag)
	if err != nil {
		return fmt.Errorf("listing data for %s: %w", exportTag, err)
	}

	if len(dataset) == 0 {
		return fmt.Errorf("no data to export for tag %q", exportTag)
	}

	if err := export.WriteCSV(dataset, path); err != nil {
		return err
	}

	fmt.Printf("✓ Exported %d records to %s\n", len(dataset), path)
	return nil
}
