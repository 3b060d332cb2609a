package stage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"

	"github.com/zeebo/xxh3"

	"github.com/vanandrew/gomemori/internal/canon"
	"github.com/vanandrew/gomemori/internal/fingerprint"
)

func (s *Stage) stagePath() string  { return filepath.Join(s.CacheDir, s.Name+".stage") }
func (s *Stage) inputsPath() string { return filepath.Join(s.CacheDir, s.Name+".inputs") }
func (s *Stage) outputsPath() string {
	return filepath.Join(s.CacheDir, s.Name+".outputs")
}

// checkCacheHit reports whether the stage's code fingerprint, the digest of
// the given effective inputs, and the on-disk outputs all match what was
// last persisted. Any missing or unreadable cache file is treated as a
// miss, never an error: a corrupted or absent cache self-heals on the next
// successful run.
func (s *Stage) checkCacheHit(eff map[string]any) bool {
	if !s.stageHashMatches() {
		return false
	}
	if !s.inputHashMatches(eff) {
		return false
	}
	return s.outputsAreConsistent()
}

func (s *Stage) stageHashMatches() bool {
	want := fingerprint.Fingerprint(s.Code)
	got, err := os.ReadFile(s.stagePath())
	if err != nil {
		return false
	}
	return bytes.Equal(want, got)
}

func (s *Stage) inputHashMatches(eff map[string]any) bool {
	current, err := canon.Canonicalise(eff, canon.DigestFile)
	if err != nil {
		return false
	}
	currentDigests := canon.Project(current, canon.ProjectDigests)

	stored, ok := s.readCanonicalFile(s.inputsPath())
	if !ok {
		return false
	}
	storedDigests := canon.Project(stored, canon.ProjectDigests)

	// xxh3 gives a cheap fast-path rejection before the authoritative but
	// more expensive structural comparison: most misses differ in at least
	// one file digest, so the common case never reaches reflect.DeepEqual.
	currentSum, err1 := jsonSum(currentDigests)
	storedSum, err2 := jsonSum(storedDigests)
	if err1 == nil && err2 == nil && currentSum != storedSum {
		return false
	}

	// storedDigests came from JSON (numbers are float64), so compare against
	// currentDigests in the same decoded-JSON form.
	b, err := json.Marshal(currentDigests)
	if err != nil {
		return false
	}
	var currentDecoded any
	if err := json.Unmarshal(b, &currentDecoded); err != nil {
		return false
	}
	return reflect.DeepEqual(currentDecoded, storedDigests)
}

func jsonSum(v any) (uint64, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(b), nil
}

func (s *Stage) outputsAreConsistent() bool {
	stored, ok := s.readCanonicalFile(s.outputsPath())
	if !ok {
		return false
	}
	m, ok := stored.(map[string]any)
	if !ok {
		return false
	}
	for _, label := range s.Outputs {
		if _, present := m[label]; !present {
			return false
		}
	}
	return redigestMatches(stored)
}

// redigestMatches re-hashes every file record found in v against the file
// currently on disk and reports whether every one still matches its
// recorded hash. A vanished or changed file fails the check.
func redigestMatches(v any) bool {
	switch val := v.(type) {
	case canon.FileRecord:
		current, err := canon.DigestFile(val.File)
		if err != nil {
			return false
		}
		return current == val.Hash
	case map[string]any:
		for _, item := range val {
			if !redigestMatches(item) {
				return false
			}
		}
		return true
	case []any:
		for _, item := range val {
			if !redigestMatches(item) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// readCanonicalFile reads a sibling cache file and decodes it into the
// canonical-value shape (with file-record nodes normalized into
// canon.FileRecord), returning false on any I/O or decode failure.
func (s *Stage) readCanonicalFile(path string) (any, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, false
	}
	return canon.NormalizeDecoded(decoded), true
}

// loadOutputs reads the cached .outputs file and inverts file records back
// to their bare paths, the representation callers see in Results. A
// top-level output value that decodes to an integral number is returned as
// int; numbers nested inside lists or maps stay float64.
func (s *Stage) loadOutputs() (map[string]any, error) {
	b, err := os.ReadFile(s.outputsPath())
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, err
	}
	normalized := canon.NormalizeDecoded(decoded)
	projected := canon.Project(normalized, canon.ProjectPaths)
	m, ok := projected.(map[string]any)
	if !ok {
		return nil, errDecodedOutputsNotObject
	}
	for k, v := range m {
		if f, isFloat := v.(float64); isFloat && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			m[k] = int(f)
		}
	}
	return m, nil
}

func (s *Stage) writeCache(eff map[string]any) error {
	if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.stagePath(), fingerprint.Fingerprint(s.Code), 0o644); err != nil {
		return err
	}
	if err := writeCanonicalJSON(s.inputsPath(), eff); err != nil {
		return err
	}
	if err := writeCanonicalJSON(s.outputsPath(), s.Results); err != nil {
		return err
	}
	return nil
}

func writeCanonicalJSON(path string, v map[string]any) error {
	canonical, err := canon.Canonicalise(v, canon.DigestFile)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(canonical, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
