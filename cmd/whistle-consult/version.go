package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of whistle-consult",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "whistle-consult %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
