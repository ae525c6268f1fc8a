package rhs

import (
	"context"
	"fmt"

	"github.com/alexiusacademia/gowing/internal/surface"
	"github.com/alexiusacademia/gowing/internal/transfer"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Case is one independent load case, such as a single flight condition
type Case struct {
	Name     string
	Config   surface.Config
	Geometry transfer.Geometry
	Forces   []r3.Vec
}

// Result holds the assembled loads of one case
type Result struct {
	Name  string
	Loads []transfer.NodeLoad
	RHS   *mat.VecDense
}

// AssembleAll builds the load vector of every case concurrently, running at
// most limit cases at once (no limit when limit <= 0). Results are returned
// in input order. The first failing case cancels the rest and its error is
// returned; no partial results are returned with an error.
func AssembleAll(ctx context.Context, cases []Case, limit int) ([]Result, error) {
	results := make([]Result, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := cases[i]
			v, loads, err := Build(c.Config, c.Geometry, c.Forces)
			if err != nil {
				return fmt.Errorf("case %q: %w", c.Name, err)
			}
			results[i] = Result{Name: c.Name, Loads: loads, RHS: v}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
