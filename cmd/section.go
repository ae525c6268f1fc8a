package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alexiusacademia/gowing/internal/material"
	"github.com/alexiusacademia/gowing/internal/spar"
	"github.com/spf13/cobra"
)

var (
	sectionRadius    float64
	sectionThickness float64
	sectionLength    float64
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Section properties of a tubular spar element",
	Long: `Calculate the area, second moments and polar moment of a
thin-walled circular tube spar element.

When --length is given, the element mass is reported using the
default spar material.

Examples:
  gowing section --radius 0.3 --thickness 0.02
  gowing section -r 0.3 -t 0.02 --length 1.5`,
	RunE: runSection,
}

func init() {
	rootCmd.AddCommand(sectionCmd)

	sectionCmd.Flags().Float64VarP(&sectionRadius, "radius", "r", 0, "Outer radius (m) [required]")
	sectionCmd.Flags().Float64VarP(&sectionThickness, "thickness", "t", 0, "Wall thickness (m) [required]")
	sectionCmd.Flags().Float64Var(&sectionLength, "length", 0, "Element length (m)")
	sectionCmd.MarkFlagRequired("radius")
	sectionCmd.MarkFlagRequired("thickness")
}

func runSection(cmd *cobra.Command, args []string) error {
	tube := spar.Tube{Radius: sectionRadius, Thickness: sectionThickness}
	props, err := tube.Properties()
	if err != nil {
		return fmt.Errorf("invalid tube: %w", err)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     TUBE SPAR SECTION PROPERTIES")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	fmt.Println("GEOMETRY:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Outer radius:\t%.4f m\n", tube.Radius)
	fmt.Fprintf(w, "  Wall thickness:\t%.4f m\n", tube.Thickness)
	fmt.Fprintf(w, "  Inner radius:\t%.4f m\n", tube.InnerRadius())
	w.Flush()
	fmt.Println()

	fmt.Println("PROPERTIES:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Area (A):\t%.6e m²\n", props.Area)
	fmt.Fprintf(w, "  Iy = Iz:\t%.6e m⁴\n", props.Iy)
	fmt.Fprintf(w, "  Polar (J):\t%.6e m⁴\n", props.J)
	w.Flush()
	fmt.Println()

	if sectionLength > 0 {
		m := material.Defaults()
		mass, err := tube.Mass(sectionLength, m)
		if err != nil {
			return err
		}
		fmt.Println("MATERIAL:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  E:\t%.1f GPa\n", m.E/1e9)
		fmt.Fprintf(w, "  G:\t%.1f GPa\n", m.G/1e9)
		fmt.Fprintf(w, "  Poisson ratio:\t%.3f\n", m.PoissonRatio())
		fmt.Fprintf(w, "  Allowable stress:\t%.1f MPa\n", m.Yield/1e6)
		fmt.Fprintf(w, "  Density:\t%.0f kg/m³\n", m.Mrho)
		fmt.Fprintf(w, "  Axial stiffness (EA):\t%.4e N\n", m.E*props.Area)
		fmt.Fprintf(w, "  Bending stiffness (EI):\t%.4e N·m²\n", m.E*props.Iy)
		fmt.Fprintf(w, "  Torsional stiffness (GJ):\t%.4e N·m²\n", m.G*props.J)
		fmt.Fprintf(w, "  Mass (%.2f m):\t%.3f kg\n", sectionLength, mass)
		w.Flush()
		fmt.Println()
	}

	return nil
}
