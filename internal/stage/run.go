package stage

import (
	"context"

	"github.com/vanandrew/gomemori/internal/merr"
)

// RunOptions controls the hit/miss decision for one Run call. ForceSkip
// forces a hit (the callable is not invoked, the last cached outputs are
// assumed valid). ForceRun forces a miss and supersedes ForceSkip.
// ForceWriteHash causes cache files to be (re)written even on a hit.
type RunOptions struct {
	ForceSkip      bool
	ForceRun       bool
	ForceWriteHash bool
}

// Run assembles the effective input map, decides whether a cached result
// can be reused, and either loads it or invokes the stage's callable. The
// outcome populates Results, RanThisCall, and LoadedFromCache.
func (s *Stage) Run(ctx context.Context, positional []any, named map[string]any, opts RunOptions) error {
	eff := s.assembleInputs(positional, named)

	hit := false
	switch {
	case opts.ForceRun:
		hit = false
	case opts.ForceSkip:
		hit = true
	case s.CacheDir != "":
		hit = s.checkCacheHit(eff)
	}

	if hit {
		results, err := s.loadOutputs()
		if err != nil {
			// Integrity failure on a supposed hit: fall back to a real run
			// rather than propagating, matching the original's self-healing
			// behavior for a corrupted cache.
			s.log.Warn("cached outputs unreadable, falling back to a run", "error", err)
			hit = false
		} else {
			s.Results = results
			s.RanThisCall = false
			s.LoadedFromCache = true
		}
	}

	if !hit {
		values, err := s.Fn(ctx, eff)
		if err != nil {
			return merr.Callable("stage "+s.Name+" failed", err)
		}
		s.Results = zipOutputs(s.Outputs, values)
		s.RanThisCall = true
		s.LoadedFromCache = false
	}

	if s.CacheDir != "" && (s.RanThisCall || opts.ForceWriteHash) {
		if err := s.writeCache(eff); err != nil {
			return err
		}
	}

	return nil
}

// zipOutputs pads or truncates values to len(labels) and zips them into a
// map keyed by the declared output labels.
func zipOutputs(labels []string, values []any) map[string]any {
	out := make(map[string]any, len(labels))
	for i, label := range labels {
		if i < len(values) {
			out[label] = values[i]
		} else {
			out[label] = nil
		}
	}
	return out
}
