package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contactlens-org/contactlens/engine"
	"github.com/contactlens-org/contactlens/records"
	"github.com/contactlens-org/contactlens/schema"
	"github.com/contactlens-org/contactlens/view"
)

var (
	analyzeFile  string
	analyzeDim   string
	analyzeDrill string
	analyzeJSON  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate a contact export and print the summary table",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := loadState(analyzeFile, analyzeDim, analyzeDrill)
		if err != nil {
			return err
		}

		headers, rows := state.Aggregate()
		if analyzeJSON {
			out := struct {
				Headers []string              `json:"headers"`
				Rows    []engine.AggregateRow `json:"rows"`
			}{headers, rows}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		printTable(headers, rows)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "contact export (.csv or .xlsx)")
	analyzeCmd.Flags().StringVar(&analyzeDim, "dimension", "ad_group", "grouping: ad_group or ad_campaign")
	analyzeCmd.Flags().StringVar(&analyzeDrill, "drilldown", "none", "drill-down: none, icp, lifecycle, job_title, department, combined")
	analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}

// loadState ingests a file and applies the requested view settings.
func loadState(path, dim, drill string) (view.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return view.State{}, fmt.Errorf("read file: %w", err)
	}

	var recs []records.Record
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		recs, err = schema.IngestXLSX(data)
	} else {
		recs, err = schema.Ingest(string(data))
	}
	if err != nil {
		return view.State{}, err
	}

	dimension, err := parseDimension(dim)
	if err != nil {
		return view.State{}, err
	}
	drillDown := schema.DrillDown(drill)
	if !drillDown.Valid() {
		return view.State{}, fmt.Errorf("unknown drill-down %q", drill)
	}

	return view.NewState().LoadRecords(recs).SetDimension(dimension).SetDrillDown(drillDown), nil
}

// parseDimension accepts the short flag form or the exact column name.
func parseDimension(s string) (schema.Dimension, error) {
	switch s {
	case "ad_group", schema.ColumnAdGroup:
		return schema.DimensionAdGroup, nil
	case "ad_campaign", schema.ColumnAdCampaign:
		return schema.DimensionAdCampaign, nil
	}
	return "", fmt.Errorf("unknown dimension %q (want ad_group or ad_campaign)", s)
}

// printTable renders the aggregate as plain text, one row per group with
// per-column counts and percentages.
func printTable(headers []string, rows []engine.AggregateRow) {
	fmt.Println(strings.Join(headers, " | "))
	var dynamic []string
	if len(headers) > 2 {
		dynamic = headers[2:]
	}

	for _, row := range rows {
		cells := []string{row.Value, fmt.Sprintf("%d", row.Total)}
		for _, col := range dynamic {
			var count int
			if row.Breakdown.Kind == engine.BreakdownCombined {
				count = row.CombinedCount(col)
			} else {
				count = row.FlatCount(col)
			}
			cells = append(cells, fmt.Sprintf("%d (%s%%)", count, engine.FormatPercent(count, row.Total)))
		}
		fmt.Println(strings.Join(cells, " | "))
	}
}
