// Package checkpoint implements an opaque value codec: store(path,
// value) writes a self-describing encoding of value atomically enough
// that a subsequent load(path) either returns the stored value or fails
// cleanly, so the analyzer can distinguish "missing" from "loadable".
//
// Encoding is YAML (gopkg.in/yaml.v3); it round-trips the
// strings/numbers/sequences/maps a CreateCmd task (stdout) or plain Go
// task body can produce. Writes go to a temp file in the same directory
// followed by a rename, so a reader never observes a partially written
// checkpoint.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// envelope exists so a zero-value / nil result round-trips distinctly
// from "no checkpoint"; yaml.v3 alone can't tell a missing file from an
// empty document.
type envelope struct {
	Value any `yaml:"value"`
}

// Exists reports whether a checkpoint is present at path, without
// attempting to decode it. The analyzer uses this to decide, cheaply,
// whether a task's upstream subgraph needs traversal at all.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Store writes value to path atomically: encode into a temp file in the
// same directory, then rename over the destination. A crash or
// concurrent reader never observes a partially written checkpoint.
func Store(path string, value any) error {
	if path == "" {
		return fmt.Errorf("checkpoint: empty path")
	}

	data, err := yaml.Marshal(envelope{Value: value})
	if err != nil {
		return fmt.Errorf("checkpoint: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("checkpoint: creating directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("checkpoint: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("checkpoint: writing: %w", err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("checkpoint: closing: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("checkpoint: committing: %w", err)
	}
	committed = true
	return nil
}

// Load decodes the checkpoint at path. A missing file is reported via a
// plain *os.PathError (os.IsNotExist); callers use Exists first to avoid
// relying on this. A present-but-undecodable file returns a non-nil,
// non-not-exist error, which callers must treat as fatal rather than as
// a cache miss.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("checkpoint: decoding %s: %w", path, err)
	}
	return normalize(env.Value), nil
}

// normalize recursively converts map[string]interface{} (yaml.v3's
// default) to keep decoded values comparable with what a Go task body
// would naturally produce; yaml.v3 already decodes mappings as
// map[string]interface{} for string keys, so this is mostly a pass
// through, kept for sequences nested under mappings.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
