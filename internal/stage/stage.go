// Package stage implements the memoizing unit of work at the heart of
// gomemori: a Stage wraps a single callable, decides whether a cached
// result can be reused by comparing a fingerprint of the stage's own code
// and a digest of its current inputs against what was last persisted, and
// runs the callable only on a miss.
package stage

import (
	"context"
	"log/slog"

	"github.com/vanandrew/gomemori/internal/fingerprint"
	"github.com/vanandrew/gomemori/internal/merr"
)

// Func is the signature every Stage wraps: it receives the assembled
// effective input map and returns the stage's raw output values in the
// order of the declared output labels, against which they are zipped by
// position.
type Func func(ctx context.Context, inputs map[string]any) ([]any, error)

// Stage wraps one unit of work: declared input names in call order, output
// labels, the callable itself, the fingerprint describing its behavior, an
// optional cache directory (memoization is disabled when empty), pinned
// argument overrides, and an alias map for read-side output name overlays.
type Stage struct {
	Name    string
	Inputs  []string
	Outputs []string
	Fn      Func
	Code    fingerprint.Unit

	CacheDir string

	pinned  map[string]any
	aliases map[string]string

	// Results, RanThisCall, and LoadedFromCache describe the outcome of the
	// most recent Run call.
	Results         map[string]any
	RanThisCall     bool
	LoadedFromCache bool

	log *slog.Logger
}

// New constructs a Stage. If outputs is empty it defaults to a single
// label, "output", matching the original's default.
func New(name string, inputs, outputs []string, fn Func, code fingerprint.Unit) *Stage {
	if len(outputs) == 0 {
		outputs = []string{"output"}
	}
	return &Stage{
		Name:    name,
		Inputs:  append([]string(nil), inputs...),
		Outputs: append([]string(nil), outputs...),
		Fn:      fn,
		Code:    code,
		pinned:  map[string]any{},
		aliases: map[string]string{},
		log:     slog.Default().With("component", "stage", "stage", name),
	}
}

// SetPinned overrides the call-time value of a declared input for every
// subsequent Run. Pinned values take ultimate precedence over both
// positional and named arguments.
func (s *Stage) SetPinned(name string, value any) error {
	if !s.hasInput(name) {
		return merr.Validation("unknown pinned input "+name+" on stage "+s.Name, nil)
	}
	s.pinned[name] = value
	return nil
}

// DeletePinned removes a previously pinned input override.
func (s *Stage) DeletePinned(name string) error {
	if _, ok := s.pinned[name]; !ok {
		return merr.Validation("input "+name+" is not pinned on stage "+s.Name, nil)
	}
	delete(s.pinned, name)
	return nil
}

// SetAlias registers alias as an additional read-side name for the
// existing output target. Aliases are additive: they never affect what
// gets persisted, only what Result can resolve. A cycle cannot be formed
// because target must already be a declared output name, never another
// alias.
func (s *Stage) SetAlias(alias, target string) error {
	if alias == target {
		return merr.Validation("alias "+alias+" cannot reference itself", nil)
	}
	if !s.hasOutput(target) {
		return merr.Validation("alias target "+target+" is not a declared output of stage "+s.Name, nil)
	}
	s.aliases[alias] = target
	return nil
}

// Result resolves name against the stage's most recent Results, following
// at most one alias hop.
func (s *Stage) Result(name string) (any, error) {
	if v, ok := s.Results[name]; ok {
		return v, nil
	}
	if target, ok := s.aliases[name]; ok {
		if v, ok := s.Results[target]; ok {
			return v, nil
		}
		return nil, merr.Validation("alias "+name+" resolves to missing output "+target, nil)
	}
	return nil, merr.Validation("unknown result "+name+" on stage "+s.Name, nil)
}

func (s *Stage) hasInput(name string) bool {
	for _, n := range s.Inputs {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Stage) hasOutput(name string) bool {
	for _, n := range s.Outputs {
		if n == name {
			return true
		}
	}
	return false
}

// assembleInputs builds the effective input map for one Run call:
// positional arguments bound by declared order, then named overrides, then
// pinned values, which win over everything else.
func (s *Stage) assembleInputs(positional []any, named map[string]any) map[string]any {
	eff := make(map[string]any, len(s.Inputs))
	for i, name := range s.Inputs {
		if i < len(positional) {
			eff[name] = positional[i]
		}
	}
	for k, v := range named {
		eff[k] = v
	}
	for name, v := range s.pinned {
		eff[name] = v
	}
	return eff
}
