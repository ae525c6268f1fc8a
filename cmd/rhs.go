package cmd

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/alexiusacademia/gowing/internal/diagram"
	"github.com/alexiusacademia/gowing/internal/loadcase"
	"github.com/alexiusacademia/gowing/internal/report"
	"github.com/alexiusacademia/gowing/internal/rhs"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	rhsFile       string
	rhsShowASCII  bool
	rhsExportFile string
	rhsXLSXFile   string
	rhsSaveFile   string
)

var rhsCmd = &cobra.Command{
	Use:   "rhs",
	Short: "Assemble the structural load vector of a load case",
	Long: `Transfer the panel forces of a load case onto the spar nodes and
assemble the augmented load vector (6 entries per node plus 6 zero
constraint rows).

The load case is a YAML or JSON file with a surface section and either
explicit nodes/points/forces arrays or a planform with a lift
distribution.

Examples:
  gowing rhs --file cruise.yaml
  gowing rhs -f cruise.yaml --ascii -o loads.png --xlsx cruise.xlsx
  gowing rhs -f planform.yaml --save cruise-explicit.yaml`,
	RunE: runRHS,
}

func init() {
	rootCmd.AddCommand(rhsCmd)

	rhsCmd.Flags().StringVarP(&rhsFile, "file", "f", "", "Path to load case file [required]")
	rhsCmd.MarkFlagRequired("file")

	// Output options
	rhsCmd.Flags().BoolVar(&rhsShowASCII, "ascii", false, "Show ASCII load diagrams")
	rhsCmd.Flags().StringVarP(&rhsExportFile, "output", "o", "", "Export load plot to file (png, svg, pdf)")
	rhsCmd.Flags().StringVar(&rhsXLSXFile, "xlsx", "", "Export loads and load vector to an XLSX workbook")
	rhsCmd.Flags().StringVar(&rhsSaveFile, "save", "", "Save the resolved case with explicit arrays")
}

func runRHS(cmd *cobra.Command, args []string) error {
	c, err := loadcase.Load(rhsFile)
	if err != nil {
		return fmt.Errorf("error loading case: %w", err)
	}
	logger.Debug("load case loaded",
		zap.String("case", c.Name),
		zap.Int("nodes", c.Config.NumNodes),
		zap.Int("panels", c.Config.NumPanels()),
	)

	v, loads, err := rhs.Build(c.Config, c.Geometry, c.Forces)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     SPAR LOAD VECTOR ASSEMBLY")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("  Case: %s\n", c.Name)
	fmt.Println()

	printSurface(c)

	fmt.Println("NODE LOADS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "  Node\tFx (N)\tFy (N)\tFz (N)\tMx (N·m)\tMy (N·m)\tMz (N·m)\t\n")
	fmt.Fprintf(w, "  ────\t──────\t──────\t──────\t────────\t────────\t────────\t\n")
	for k, l := range loads {
		fmt.Fprintf(w, "  %d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
			k, l.Force.X, l.Force.Y, l.Force.Z, l.Moment.X, l.Moment.Y, l.Moment.Z)
	}
	w.Flush()
	fmt.Println()

	panel := transfer.SumVecs(c.Forces)
	node := transfer.TotalForce(loads)
	drift := math.Max(math.Abs(panel.X-node.X), math.Max(math.Abs(panel.Y-node.Y), math.Abs(panel.Z-node.Z)))
	fmt.Print(diagram.DrawSummaryBox("FORCE CONSERVATION", []string{
		fmt.Sprintf("Panels:  ΣF = (%.3f, %.3f, %.3f) N", panel.X, panel.Y, panel.Z),
		fmt.Sprintf("Nodes:   ΣF = (%.3f, %.3f, %.3f) N", node.X, node.Y, node.Z),
		fmt.Sprintf("Max difference: %.3e N", drift),
	}))
	fmt.Println()

	fmt.Println("LOAD VECTOR:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Length:\t%d\n", v.Len())
	fmt.Fprintf(w, "  Constraint rows:\t%d, max |value| %.1e\n", rhs.ConstraintRows, mat.Norm(rhs.Constraints(v), math.Inf(1)))
	w.Flush()
	fmt.Println()
	for i := 0; i < v.Len(); i += rhs.DOFPerNode {
		label := fmt.Sprintf("node %d", i/rhs.DOFPerNode)
		if i/rhs.DOFPerNode >= c.Config.NumNodes {
			label = "constr"
		}
		fmt.Printf("  %-7s", label)
		for j := i; j < i+rhs.DOFPerNode && j < v.Len(); j++ {
			fmt.Printf(" %12.4e", v.AtVec(j))
		}
		fmt.Println()
	}
	fmt.Println()

	if rhsShowASCII {
		fmt.Print(diagram.DrawLoadDiagram(loads))
		fz := make([]float64, len(loads))
		for k, l := range loads {
			fz[k] = l.Force.Z
		}
		fmt.Print(diagram.DrawSpanwiseChart("Fz by node, root to tip", fz))
		fmt.Println()
	}

	if rhsExportFile != "" {
		if err := diagram.ExportLoadPlot(c.Geometry.Nodes, loads, rhsExportFile); err != nil {
			return fmt.Errorf("error exporting plot: %w", err)
		}
		fmt.Printf("  ✓ Load plot exported to: %s\n", rhsExportFile)
	}

	if rhsSaveFile != "" {
		if err := loadcase.Save(rhsSaveFile, c); err != nil {
			return fmt.Errorf("error saving case: %w", err)
		}
		fmt.Printf("  ✓ Case saved to: %s\n", rhsSaveFile)
	}

	if rhsXLSXFile != "" {
		if err := report.Write(rhsXLSXFile, report.Workbook{Case: c, RHS: v}); err != nil {
			return fmt.Errorf("error exporting workbook: %w", err)
		}
		fmt.Printf("  ✓ Workbook exported to: %s\n", rhsXLSXFile)
	}

	return nil
}

func printSurface(c rhs.Case) {
	cfg := c.Config
	fmt.Println("SURFACE:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Name:\t%s\n", cfg.Name)
	fmt.Fprintf(w, "  Nodes:\t%d\n", cfg.NumNodes)
	fmt.Fprintf(w, "  Panels:\t%d chordwise × %d spanwise\n", cfg.NumChordwise, cfg.NumSpanwise)
	fmt.Fprintf(w, "  Weighting:\t%s\n", cfg.Weighting)
	fmt.Fprintf(w, "  Symmetry:\t%t\n", cfg.Symmetry)
	fmt.Fprintf(w, "  Spar axis:\t%.0f%% chord\n", cfg.FEMOrigin*100)
	w.Flush()
	fmt.Println()
}
