package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexiusacademia/gowing/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "gowing",
	Short: "Wing spar load transfer tool",
	Long: `gowing - Go Wing Spar Load Transfer

A CLI tool that maps aerodynamic panel forces onto the nodes of a
wing spar and assembles the structural load vector.

This tool helps aerostructural engineers:
  - Transfer panel forces to spar nodes (nearest or linear weighting)
  - Assemble the augmented load vector (RHS) with constraint rows
  - Compute analytic Jacobian blocks and check them by finite differences
  - Assemble many load cases in parallel
  - Store and replay optimizer iterations`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l.Named("gowing")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gowing v%-48s║\n", version.Version)
		fmt.Println("  ║   Go Wing Spar Load Transfer                              ║")
		fmt.Printf("  ║   %s ©  %-40s║\n", version.Author, version.Year)
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Maps aerodynamic panel forces onto wing spar nodes and")
		fmt.Println("  assembles the structural load vector.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Nearest and linear force weighting")
		fmt.Println("    • Load vector assembly with constraint rows")
		fmt.Println("    • Analytic Jacobians with finite-difference checks")
		fmt.Println("    • Parallel load case assembly")
		fmt.Println("    • Iteration snapshots and a frame viewer")
		fmt.Println()
		fmt.Println("  Use 'gowing --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
