package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/gowing/internal/loadcase"
	"github.com/alexiusacademia/gowing/internal/report"
	"github.com/alexiusacademia/gowing/internal/sensitivity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	jacobianFile      string
	jacobianWrt       []string
	jacobianCheck     bool
	jacobianStep      float64
	jacobianTolerance float64
	jacobianXLSXFile  string
)

var jacobianBlocks = map[string]sensitivity.Key{
	"forces": sensitivity.ForcesKey,
	"nodes":  sensitivity.NodesKey,
	"points": sensitivity.PointsKey,
}

var jacobianCmd = &cobra.Command{
	Use:   "jacobian",
	Short: "Compute the load vector Jacobian blocks of a load case",
	Long: `Compute the analytic partial derivatives of the load vector with
respect to the panel forces, the node positions and the panel
reference points.

With --check each block is compared against central finite
differences.

Examples:
  gowing jacobian --file cruise.yaml
  gowing jacobian -f cruise.yaml --wrt forces,nodes --check`,
	RunE: runJacobian,
}

func init() {
	rootCmd.AddCommand(jacobianCmd)

	jacobianCmd.Flags().StringVarP(&jacobianFile, "file", "f", "", "Path to load case file [required]")
	jacobianCmd.MarkFlagRequired("file")

	jacobianCmd.Flags().StringSliceVar(&jacobianWrt, "wrt", []string{"forces", "nodes", "points"}, "Blocks to compute (forces, nodes, points)")
	jacobianCmd.Flags().BoolVar(&jacobianCheck, "check", false, "Compare against finite differences")
	jacobianCmd.Flags().Float64Var(&jacobianStep, "step", sensitivity.DefaultStep, "Finite difference step")
	jacobianCmd.Flags().Float64Var(&jacobianTolerance, "tol", 1e-5, "Relative tolerance for --check")
	jacobianCmd.Flags().StringVar(&jacobianXLSXFile, "xlsx", "", "Export the blocks to an XLSX workbook")
}

func runJacobian(cmd *cobra.Command, args []string) error {
	keys := make([]sensitivity.Key, 0, len(jacobianWrt))
	for _, name := range jacobianWrt {
		k, ok := jacobianBlocks[strings.TrimSpace(name)]
		if !ok {
			return fmt.Errorf("invalid --wrt value %q (use forces, nodes or points)", name)
		}
		keys = append(keys, k)
	}

	c, err := loadcase.Load(jacobianFile)
	if err != nil {
		return fmt.Errorf("error loading case: %w", err)
	}

	p, err := sensitivity.New(c.Config, c.Geometry, c.Forces)
	if err != nil {
		return err
	}
	blocks, err := p.Blocks(keys...)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     LOAD VECTOR JACOBIAN")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("  Case: %s\n", c.Name)
	fmt.Println()

	printSurface(c)

	fmt.Println("BLOCKS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Block\tShape\tNonzeros\tFrobenius\n")
	fmt.Fprintf(w, "  ─────\t─────\t────────\t─────────\n")
	for _, k := range uniqueKeys(keys) {
		b := blocks[k]
		r, cols := c.Config.RHSLength(), 0
		if !b.IsEmpty() {
			r, cols = b.Dims()
		}
		fmt.Fprintf(w, "  %s\t%d × %d\t%d\t%.6e\n", k, r, cols, nonzeros(b), frobenius(b))
	}
	w.Flush()
	fmt.Println()

	failed := 0
	if jacobianCheck {
		fmt.Println("FINITE DIFFERENCE CHECK:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Block\tMax |error|\tRelative\tStatus\n")
		fmt.Fprintf(w, "  ─────\t───────────\t────────\t──────\n")
		for _, k := range uniqueKeys(keys) {
			fd, err := sensitivity.FiniteDifference(c.Config, c.Geometry, c.Forces, k, jacobianStep)
			if err != nil {
				return err
			}
			abs, rel := compareBlocks(blocks[k], fd)
			status := "✓ OK"
			if rel > jacobianTolerance {
				status = "✗ FAIL"
				failed++
			}
			logger.Debug("finite difference check",
				zap.Stringer("block", k),
				zap.Float64("abs", abs),
				zap.Float64("rel", rel),
			)
			fmt.Fprintf(w, "  %s\t%.3e\t%.3e\t%s\n", k, abs, rel, status)
		}
		w.Flush()
		fmt.Println()
	}

	if jacobianXLSXFile != "" {
		wb := report.Workbook{Case: c, RHS: p.RHS(), Blocks: blocks}
		if err := report.Write(jacobianXLSXFile, wb); err != nil {
			return fmt.Errorf("error exporting workbook: %w", err)
		}
		fmt.Printf("  ✓ Workbook exported to: %s\n", jacobianXLSXFile)
	}

	if failed > 0 {
		return fmt.Errorf("%d block(s) differ from finite differences by more than %g", failed, jacobianTolerance)
	}
	return nil
}

func uniqueKeys(keys []sensitivity.Key) []sensitivity.Key {
	seen := make(map[sensitivity.Key]bool, len(keys))
	var out []sensitivity.Key
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func nonzeros(m *mat.Dense) int {
	if m.IsEmpty() {
		return 0
	}
	n := 0
	for _, v := range m.RawMatrix().Data {
		if v != 0 {
			n++
		}
	}
	return n
}

func frobenius(m *mat.Dense) float64 {
	if m.IsEmpty() {
		return 0
	}
	return mat.Norm(m, 2)
}

// compareBlocks returns the largest absolute difference and that difference
// relative to the largest analytic entry (or 1, if larger).
func compareBlocks(an, fd *mat.Dense) (abs, rel float64) {
	if an.IsEmpty() || fd.IsEmpty() {
		return 0, 0
	}
	var diff mat.Dense
	diff.Sub(an, fd)

	var scale float64 = 1
	for _, v := range an.RawMatrix().Data {
		scale = math.Max(scale, math.Abs(v))
	}
	for _, v := range diff.RawMatrix().Data {
		abs = math.Max(abs, math.Abs(v))
	}
	return abs, abs / scale
}
