package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/graph"
)

// Graph prints the Mermaid state diagram of the machine referenced by ref.
// When an input is given the machine runs over it first and the visited
// states are highlighted.
func Graph(ctx context.Context, opts Options, ref string, input ...string) error {
	def, err := LoadDefinition(ctx, ref, opts.Dir)
	if err != nil {
		return err
	}
	m, err := turing.Compile(def)
	if err != nil {
		return err
	}

	var overlay *graph.Overlay
	if len(input) > 0 {
		eng, closeStore, err := setup(opts, def)
		if err != nil {
			return err
		}
		defer closeStore()

		record, err := eng.Run(ctx, m, input[0])
		if err != nil {
			return err
		}
		overlay = graph.OverlayFromTrace(record.Result.Trace)
	}

	fmt.Fprint(opts.out(), graph.GenerateMermaid(m, overlay))
	return nil
}
