package cmd

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/alexiusacademia/gowing/internal/loadcase"
	"github.com/alexiusacademia/gowing/internal/rhs"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	batchFiles []string
	batchJobs  int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assemble the load vectors of several load cases in parallel",
	Long: `Load every case file and assemble its load vector, running up to
--jobs cases at once. The first failing case stops the batch.

Examples:
  gowing batch -f cruise.yaml -f pullup.yaml -f gust.yaml
  gowing batch -f cases/a.yaml -f cases/b.yaml --jobs 2`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringArrayVarP(&batchFiles, "file", "f", nil, "Load case file, repeatable [required]")
	batchCmd.MarkFlagRequired("file")
	batchCmd.Flags().IntVarP(&batchJobs, "jobs", "j", runtime.NumCPU(), "Maximum cases assembled at once (0 = no limit)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchJobs < 0 {
		return fmt.Errorf("invalid --jobs: %d", batchJobs)
	}

	cases := make([]rhs.Case, 0, len(batchFiles))
	for _, f := range batchFiles {
		c, err := loadcase.Load(f)
		if err != nil {
			return fmt.Errorf("error loading case: %w", err)
		}
		cases = append(cases, c)
	}

	start := time.Now()
	results, err := rhs.AssembleAll(cmd.Context(), cases, batchJobs)
	if err != nil {
		return err
	}
	logger.Info("batch assembled",
		zap.Int("cases", len(results)),
		zap.Int("jobs", batchJobs),
		zap.Duration("elapsed", time.Since(start)),
	)

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     BATCH LOAD VECTOR ASSEMBLY")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Case\tNodes\tPanels\tΣFz panels (N)\tΣFz nodes (N)\t|RHS|\n")
	fmt.Fprintf(w, "  ────\t─────\t──────\t──────────────\t─────────────\t─────\n")
	for i, r := range results {
		c := cases[i]
		fmt.Fprintf(w, "  %s\t%d\t%d\t%.3f\t%.3f\t%.4e\n",
			r.Name,
			c.Config.NumNodes,
			c.Config.NumPanels(),
			transfer.SumVecs(c.Forces).Z,
			transfer.TotalForce(r.Loads).Z,
			mat.Norm(r.RHS, 2),
		)
	}
	w.Flush()
	fmt.Println()
	fmt.Printf("  ✓ %d case(s) assembled\n", len(results))
	fmt.Println()
	return nil
}
