package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored runs",
	RunE:  runSnapshotList,
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println()
	if len(runs) == 0 {
		fmt.Printf("  No runs in %s\n", snapshotDB)
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Run\tName\tIterations\tCreated\n")
	fmt.Fprintf(w, "  ───\t────\t──────────\t───────\n")
	for _, r := range runs {
		fmt.Fprintf(w, "  %s\t%s\t%d\t%s\n", r.ID, r.Name, r.Iterations, r.Created.Format(time.DateTime))
	}
	w.Flush()
	fmt.Println()
	return nil
}
