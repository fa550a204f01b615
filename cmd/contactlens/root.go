package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/contactlens-org/contactlens/config"
)

// ============================================================================
// CONTACTLENS CLI
// ============================================================================

const version = "0.1.0"

var (
	cfgFile string
	cfg     *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:     "contactlens",
	Short:   "Contact-export analytics: group, drill down, summarize",
	Version: version,
	Long: `contactlens ingests marketing-contact CSV/XLSX exports, groups contacts
by ad group or campaign, drills down by ICP priority, lifecycle stage, job
title, or department, and can ask Gemini for a narrative summary.`,
}

// Execute is the entry point called by main.main().
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.contactlens/config.yaml)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: analyze works without any configuration.
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Config{}
	}
	cfg = c
}
