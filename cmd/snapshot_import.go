package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gowing/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	snapshotImportFile string
	snapshotImportRun  string
	snapshotImportName string
)

var snapshotImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Append iterations from a JSON file to a run",
	Long: `Validate every iteration in the file and append them to a run.
Without --run a new run is created and its id printed.

Examples:
  gowing snapshot import --db runs.db -f iterations.json --name crm
  gowing snapshot import --db runs.db -f more.json --run 3f1c...`,
	RunE: runSnapshotImport,
}

func init() {
	snapshotCmd.AddCommand(snapshotImportCmd)

	snapshotImportCmd.Flags().StringVarP(&snapshotImportFile, "file", "f", "", "Path to iterations JSON file [required]")
	snapshotImportCmd.MarkFlagRequired("file")
	snapshotImportCmd.Flags().StringVar(&snapshotImportRun, "run", "", "Existing run id to append to")
	snapshotImportCmd.Flags().StringVar(&snapshotImportName, "name", "", "Name for a new run")
}

func runSnapshotImport(cmd *cobra.Command, args []string) error {
	recs, err := snapshot.LoadRecords(snapshotImportFile)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Import(cmd.Context(), snapshotImportRun, snapshotImportName, recs)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  ✓ %d iteration(s) imported\n", len(recs))
	fmt.Printf("  Run: %s\n", run)
	fmt.Println()
	return nil
}
