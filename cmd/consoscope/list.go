package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listTag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored consumption data",
	Long:  `Displays all stored daily consumption records from the database.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by source tag (default: all tags)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Determine which tags to query
	tags := []string{}
	if listTag != "" {
		tags = append(tags, listTag)
	} else {
		tags, err = db.ListSources()
		if err != nil {
			return fmt.Errorf("listing sources: %w", err)
		}
		if len(tags) == 0 {
			fmt.Println("No data found")
			return nil
		}
	}

	// Query and display data for each tag
	for _, tag := range tags {
		data, err := db.ListRecords(tag)
		if err != nil {
			return fmt.Errorf("listing data for %s: %w", tag, err)
		}

		if len(data) == 0 {
			fmt.Printf("No data found for %s\n", tag)
			continue
		}

		fmt.Printf("\n%s Consumption Data:\n", tag)
		fmt.Println("----------------------------------------")
		fmt.Printf("%-12s  %12s\n", "Date", "MW")
		fmt.Println("----------------------------------------")

		var total float64
		for _, record := range data {
			fmt.Printf("%-12s  %12.2f\n", record.Date.Format("2006-01-02"), record.Value)
			total += record.Value
		}

		fmt.Println("----------------------------------------")
		fmt.Printf("Total: %.2f MW (%d records)\n", total, len(data))
	}

	return nil
}
