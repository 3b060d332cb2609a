// Package pipeline evaluates an ordered list of stages connected by
// predecessor edges. List order is execution order: it is never
// topologically re-derived from the edges.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vanandrew/gomemori/internal/merr"
	"github.com/vanandrew/gomemori/internal/stage"
)

// Start is the sentinel predecessor spec: the edge's stage receives the
// pipeline's own Run arguments verbatim instead of any upstream results.
type Start struct{}

// Edge connects one stage to its predecessor(s). Predecessor must be
// Start{}, a single *stage.Stage, or a []*stage.Stage (a tuple of
// predecessors whose results are unioned, later predecessors in the slice
// overriding earlier ones on key collision).
type Edge struct {
	Predecessor any
	Stage       *stage.Stage
}

// Pipeline evaluates its edges in declared order on every Run.
type Pipeline struct {
	edges []Edge
	log   *slog.Logger
}

// New validates edges and constructs a Pipeline. Construction fails if any
// edge's Predecessor is not Start{}, *stage.Stage, or []*stage.Stage.
func New(edges []Edge) (*Pipeline, error) {
	for i, e := range edges {
		switch e.Predecessor.(type) {
		case Start, *stage.Stage, []*stage.Stage:
			// valid
		default:
			return nil, merr.Validation(fmt.Sprintf("pipeline edge %d has an invalid predecessor spec", i), nil)
		}
		if e.Stage == nil {
			return nil, merr.Validation(fmt.Sprintf("pipeline edge %d has a nil stage", i), nil)
		}
	}
	return &Pipeline{
		edges: edges,
		log:   slog.Default().With("component", "pipeline"),
	}, nil
}

// Run evaluates every edge in declared order. For a Start edge, the
// pipeline's own positional/named arguments are forwarded verbatim. For a
// stage-fed edge, the downstream stage's input map is the union of its
// predecessors' Results (later predecessors override earlier ones on
// collision), filtered to only the downstream stage's declared input
// names.
func (p *Pipeline) Run(ctx context.Context, positional []any, named map[string]any, opts stage.RunOptions) error {
	for _, e := range p.edges {
		var err error
		switch pred := e.Predecessor.(type) {
		case Start:
			err = e.Stage.Run(ctx, positional, named, opts)
		case *stage.Stage:
			err = p.runDownstream(ctx, e.Stage, []*stage.Stage{pred}, opts)
		case []*stage.Stage:
			err = p.runDownstream(ctx, e.Stage, pred, opts)
		}
		if err != nil {
			p.log.Error("stage failed",
				"stage", e.Stage.Name,
				"inputs", filterToDeclared(p.upstreamResultsFor(e), e.Stage.Inputs),
				"upstream_results", p.upstreamResultsFor(e),
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (p *Pipeline) runDownstream(ctx context.Context, downstream *stage.Stage, preds []*stage.Stage, opts stage.RunOptions) error {
	union := unionResults(preds)
	filtered := filterToDeclared(union, downstream.Inputs)
	return downstream.Run(ctx, nil, filtered, opts)
}

func (p *Pipeline) upstreamResultsFor(e Edge) map[string]any {
	switch pred := e.Predecessor.(type) {
	case *stage.Stage:
		return unionResults([]*stage.Stage{pred})
	case []*stage.Stage:
		return unionResults(pred)
	default:
		return nil
	}
}

// unionResults unions the Results of every predecessor in list order:
// later predecessors override earlier ones on key collision.
func unionResults(preds []*stage.Stage) map[string]any {
	out := map[string]any{}
	for _, s := range preds {
		for k, v := range s.Results {
			out[k] = v
		}
	}
	return out
}

// filterToDeclared keeps only the entries of m whose key is one of the
// downstream stage's declared input names. A declared name absent from m is
// simply left out of the result, for the stage's own Fn to default or
// error on.
func filterToDeclared(m map[string]any, declared []string) map[string]any {
	out := map[string]any{}
	for _, name := range declared {
		if v, ok := m[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Results returns the accumulated union of every edge's stage's Results, in
// edge order (later edges override earlier ones on key collision), with
// bare strings that name an existing file rewritten to absolute paths.
// This rewriting is presentation only: persisted cache JSON always stores
// each stage's own Results values untouched.
func (p *Pipeline) Results() map[string]any {
	out := map[string]any{}
	for _, e := range p.edges {
		for k, v := range e.Stage.Results {
			out[k] = rewriteAbsPaths(v)
		}
	}
	return out
}

func rewriteAbsPaths(v any) any {
	switch val := v.(type) {
	case string:
		info, err := os.Stat(val)
		if err == nil && info.Mode().IsRegular() {
			if abs, err := filepath.Abs(val); err == nil {
				return abs
			}
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = rewriteAbsPaths(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = rewriteAbsPaths(item)
		}
		return out
	default:
		return v
	}
}
