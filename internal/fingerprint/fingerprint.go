// Package fingerprint produces a stable byte string for a unit of behavior,
// the Go-native analogue of memori's reflective code-fingerprinting: since a
// compiled Go function's bytecode is not introspectable the way CPython's
// is, a Unit declares its behavior and its hashable dependencies explicitly
// rather than having them discovered by walking bytecode at runtime.
package fingerprint

import (
	"crypto/sha256"
	"runtime"
)

// Unit is a named, versioned description of one piece of behavior. Deps are
// the transitively-hashable references this unit opted into by construction
// -- the explicit analogue of memori's `hashable` decorator marker. A Unit
// with no Deps fingerprints identically to a plain hash of its Source, the
// same way an unmarked function reference in memori collapses to its
// qualified name rather than a recursive hash.
type Unit struct {
	Name   string
	Source []byte
	Deps   []Unit
}

// Fingerprint returns the SHA-256 digest of the concatenation, in order, of:
// the unit's own Source bytes, the sequence of its dependencies' Names, then
// each dependency's own fingerprint recursively. This mirrors memori's concatenation order for a
// function's constants, referenced-symbol names, instruction bytes, and
// sub-fingerprints: Source stands in for "constants + instruction bytes"
// and the recursive Deps walk stands in for the opted-in transitive symbol
// set.
func Fingerprint(u Unit) []byte {
	h := sha256.New()
	h.Write(u.Source)
	for _, d := range u.Deps {
		h.Write([]byte(d.Name))
	}
	for _, d := range u.Deps {
		h.Write(Fingerprint(d))
	}
	return h.Sum(nil)
}

// FromSource builds a Unit whose behavior is declared directly as source
// text or any other canonical byte representation, with explicit deps.
func FromSource(name string, src []byte, deps ...Unit) Unit {
	return Unit{Name: name, Source: append([]byte(nil), src...), Deps: deps}
}

// FromFunc builds a Unit for a Go function value. The function's symbol
// name, file, and starting line stand in for "cosmetic details stripped,
// behavior kept" in the absence of bytecode introspection: two builds of
// the same source produce the same file/line, while a behavior change that
// moves the function necessarily changes at least one of them. Callers
// that want real sensitivity to a function's behavior should pass its
// actual dependencies in deps, since FromFunc alone cannot see into the
// function body.
func FromFunc(name string, fn any, deps ...Unit) Unit {
	pc := runtime.FuncForPC(funcEntry(fn))
	var src []byte
	if pc != nil {
		file, line := pc.FileLine(pc.Entry())
		src = []byte(pc.Name() + "\x00" + file + "\x00" + itoa(line))
	} else {
		src = []byte(name)
	}
	return Unit{Name: name, Source: src, Deps: deps}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
