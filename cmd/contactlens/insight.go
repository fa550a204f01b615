package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contactlens-org/contactlens/insight"
)

var (
	insightFile  string
	insightDim   string
	insightDrill string
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Generate an AI narrative summary for a contact export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for insight generation")
		}

		state, err := loadState(insightFile, insightDim, insightDrill)
		if err != nil {
			return err
		}

		headers, rows := state.Aggregate()
		summary := insight.Summarize(headers, rows, state.Dimension, state.DrillDown)
		prompt := insight.BuildPrompt(summary, state.Dimension, state.DrillDown)

		client := insight.NewClient(insight.Config{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			Endpoint: cfg.GeminiEndpoint,
		})
		narrative, err := client.Generate(prompt)
		if err != nil {
			return err
		}

		fmt.Println(narrative)
		return nil
	},
}

func init() {
	insightCmd.Flags().StringVar(&insightFile, "file", "", "contact export (.csv or .xlsx)")
	insightCmd.Flags().StringVar(&insightDim, "dimension", "ad_group", "grouping: ad_group or ad_campaign")
	insightCmd.Flags().StringVar(&insightDrill, "drilldown", "none", "drill-down: none, icp, lifecycle, job_title, department, combined")
	insightCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(insightCmd)
}
