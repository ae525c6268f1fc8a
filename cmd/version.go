package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gowing/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gowing",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gowing v%s\n", version.Version)
		fmt.Println("Wing Spar Load Transfer Tool")
		fmt.Printf("Build: %s (commit %s)\n", version.BuildTime, version.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
