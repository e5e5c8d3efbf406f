package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlefevre/consoscope/internal/publisher"
	"github.com/mlefevre/consoscope/internal/stats"
	"github.com/mlefevre/consoscope/pkg/models"
)

var (
	publishTag   string
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish stored consumption data over MQTT",
	Long: `Reads stored consumption records from the database and publishes them
to the configured MQTT broker, one message per reading plus a retained
dataset summary.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishTag, "tag", "odre", "Source tag to publish")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all records (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of records to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}

	// Create publisher
	pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix())
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Get records based on --all flag
	var data models.Dataset
	if publishAll {
		data, err = db.ListRecords(publishTag)
	} else {
		data, err = db.ListUnpublished(publishTag)
	}
	if err != nil {
		return fmt.Errorf("listing data for %s: %w", publishTag, err)
	}

	if len(data) == 0 {
		if publishAll {
			fmt.Printf("No data found for %s\n", publishTag)
		} else {
			fmt.Printf("No unpublished data found for %s\n", publishTag)
		}
		return nil
	}

	// Apply limit if specified
	if publishLimit > 0 && len(data) > publishLimit {
		data = data[:publishLimit]
		fmt.Printf("Limiting to %d records (--limit flag)\n", publishLimit)
	}

	// Publish each record
	fmt.Printf("Publishing %d records for %s...\n", len(data), publishTag)
	published := 0
	for i, record := range data {
		fmt.Printf("[%d/%d] Publishing %s (%.2f MW)... ", i+1, len(data), record.Date.Format("2006-01-02"), record.Value)
		if err := pub.PublishReading(record); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(record.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	// Publish the summary of the full stored dataset
	full, err := db.ListRecords(publishTag)
	if err != nil {
		return fmt.Errorf("listing data for summary: %w", err)
	}
	if summary, err := stats.Summarize(full); err == nil {
		if err := pub.PublishSummary(summary); err != nil {
			fmt.Printf("⚠ Publishing summary failed: %v\n", err)
		} else {
			fmt.Println("✓ Published dataset summary")
		}
	}

	fmt.Printf("\nTotal records published: %d/%d\n", published, len(data))
	return nil
}
