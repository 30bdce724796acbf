// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/whistle-consult/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect the whistleblowing report form",
}

var reportTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the report template",
	Long: `Template prints the report form exactly as it is given to the model when
drafting, or the section list as JSON with --json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report.Template())
		}
		_, err := fmt.Fprintln(out, report.Render())
		return err
	},
}

func init() {
	reportTemplateCmd.Flags().Bool("json", false, "output sections as JSON")

	reportCmd.AddCommand(reportTemplateCmd)
	rootCmd.AddCommand(reportCmd)
}
