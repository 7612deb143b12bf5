package prover

import (
	"context"
	"fmt"
	"runtime"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/zkledger/log"
	"golang.org/x/sync/errgroup"
)

// ProveBatch proves independent assignments concurrently with at most
// workers proofs in flight (NumCPU if workers <= 0). Proofs are returned in
// the assignments order. The first failure, or the cancellation of ctx,
// stops scheduling new proofs.
func ProveBatch(ctx context.Context, keys *Keys, assignments []frontend.Circuit, workers int) ([][]byte, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	proofs := make([][]byte, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, assignment := range assignments {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			proof, err := Prove(keys, assignment)
			if err != nil {
				return fmt.Errorf("assignment %d: %w", i, err)
			}
			proofs[i] = proof
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debugw("batch proved", "proofs", len(proofs), "workers", workers)
	return proofs, nil
}
