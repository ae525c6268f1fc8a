package cmd

import (
	"github.com/alexiusacademia/gowing/internal/snapshot"
	"github.com/spf13/cobra"
)

var snapshotDB string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store optimizer iterations for replay",
	Long: `Maintain a SQLite store of optimizer iterations.

Each iteration carries the surface mesh and, depending on the
analysis, spar data (r, t, vonmises), aerodynamic data (twist,
sec_forces, normals, cos_dih) or both.

Subcommands:
  import  - Append iterations from a JSON file to a run
  list    - List the stored runs

Example JSON file structure:
[
  {
    "mesh": [[[0, 0, 0], [0.5, 5, 0]], [[2, 0, 0], [2.2, 5, 0]]],
    "r": [0.3], "t": [0.02], "vonmises": [1.2e8],
    "twist": [2, 0],
    "sec_forces": [[10, 0, 900]], "normals": [[0, 0, 1]], "cos_dih": [1]
  }
]`,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.PersistentFlags().StringVar(&snapshotDB, "db", "gowing.db", "Path to the snapshot database")
}

func openStore() (*snapshot.Store, error) {
	return snapshot.Open(snapshotDB, snapshot.WithLogger(logger.Named("snapshot")))
}
