// Package report writes pipeline artifacts to disk, creating parent
// directories on demand.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteText writes a UTF-8 text artifact.
func WriteText(path, content string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// WriteJSON writes an indented JSON artifact.
func WriteJSON(path string, value interface{}) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// WriteBytes writes a binary artifact (PDF output).
func WriteBytes(path string, content []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
