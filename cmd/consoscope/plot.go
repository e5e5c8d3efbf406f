package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	plotTag    string
	plotWidth  int
	plotHeight int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot stored consumption data as an ASCII chart",
	Long:  `Renders the stored daily consumption series as a line chart in the terminal.`,
	RunE:  runPlot,
}

func init() {
	plotCmd.Flags().StringVar(&plotTag, "tag", "odre", "Source tag to plot")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "Chart width in columns")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "Chart height in rows")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	dataset, err := db.ListRecords(plotTag)
	if err != nil {
		return fmt.Errorf("listing data for %s: %w", plotTag, err)
	}

	if len(dataset) == 0 {
		return fmt.Errorf("no data to plot for tag %q", plotTag)
	}

	caption := fmt.Sprintf("%s daily consumption (MW), %s to %s",
		plotTag,
		dataset[0].Date.Format("2006-01-02"),
		dataset[len(dataset)-1].Date.Format("2006-01-02"))

	graph := asciigraph.Plot(dataset.Values(),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)

	fmt.Println(graph)
	return nil
}
