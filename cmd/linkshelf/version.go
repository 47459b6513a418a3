package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cyan.Println(version.String())
	},
}
