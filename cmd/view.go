package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/alexiusacademia/gowing/internal/diagram"
	"github.com/alexiusacademia/gowing/internal/snapshot"
	"github.com/alexiusacademia/gowing/internal/viewer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	viewRun       string
	viewOutputDir string
	viewStart     int
	viewNoWing    bool
	viewNoTube    bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Step through the iterations of a stored run",
	Long: `Replay a stored run one iteration at a time. Every change of
iteration or view angle writes a new PNG frame to the output directory.

Commands are read from standard input, one per line:
  n        next iteration
  p        previous iteration
  g N      go to iteration N
  l, r     rotate left or right
  u, d     tilt up or down
  q        quit

Examples:
  gowing view --db runs.db --run 3f1c... -o frames/
  printf 'n\nn\nq\n' | gowing view --db runs.db --run 3f1c...`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVar(&snapshotDB, "db", "gowing.db", "Path to the snapshot database")
	viewCmd.Flags().StringVar(&viewRun, "run", "", "Run id [required]")
	viewCmd.MarkFlagRequired("run")
	viewCmd.Flags().StringVarP(&viewOutputDir, "output", "o", "frames", "Directory for rendered frames")
	viewCmd.Flags().IntVar(&viewStart, "iteration", 0, "Iteration to start from")
	viewCmd.Flags().BoolVar(&viewNoWing, "no-wing", false, "Hide the wing mesh and aerodynamic plots")
	viewCmd.Flags().BoolVar(&viewNoTube, "no-tube", false, "Hide the spar tube and structural plots")
}

// announcer prints each frame as it is written
type announcer struct {
	*diagram.FrameRenderer
}

func (a announcer) Draw(ctx context.Context, sc viewer.Scene) error {
	if err := a.FrameRenderer.Draw(ctx, sc); err != nil {
		return err
	}
	frames := a.Frames()
	fmt.Printf("  %s  (az %.0f°, el %.0f°)  → %s\n",
		sc.Title, sc.State.Azimuth, sc.State.Elevation, frames[len(frames)-1])
	if sc.Mass > 0 {
		fmt.Printf("    spar mass %.1f kg\n", sc.Mass)
	}
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	h, err := store.History(cmd.Context(), viewRun)
	if err != nil {
		store.Close()
		return err
	}

	frames, err := diagram.NewFrameRenderer(viewOutputDir)
	if err != nil {
		store.Close()
		return err
	}

	opts := viewer.DefaultOptions()
	opts.ShowWing = !viewNoWing
	opts.ShowTube = !viewNoTube

	loop := &viewer.Loop{
		History:  h,
		Options:  opts,
		Renderer: announcer{frames},
		Logger:   logger.Named("viewer"),
		Teardown: func() error {
			logger.Info("viewer closed",
				zap.String("run", viewRun),
				zap.Int("frames", len(frames.Frames())),
			)
			return store.Close()
		},
	}

	fmt.Println()
	fmt.Printf("  Run %s: %d iteration(s)\n", h.Run(), h.Len())
	counts := make(map[snapshot.Kind]int)
	for _, k := range h.Kinds() {
		counts[k]++
	}
	for _, k := range []snapshot.Kind{snapshot.Coupled, snapshot.Structural, snapshot.Aerodynamic} {
		if counts[k] > 0 {
			fmt.Printf("    %-12s %d\n", k, counts[k])
		}
	}
	fmt.Println("  Commands: n, p, g N, l, r, u, d, q")
	fmt.Println()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events := viewer.ReadEvents(ctx, os.Stdin, func(err error) {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	})
	final, err := loop.Run(ctx, viewer.Initial(viewStart, h.Len()), events)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  ✓ Stopped at iteration %d, %d frame(s) in %s\n", final.Iteration, len(frames.Frames()), viewOutputDir)
	fmt.Println()
	return nil
}
