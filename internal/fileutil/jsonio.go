package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// WriteJSON marshals v as indented UTF-8 JSON and writes it atomically.
// All digest stores are persisted through this path so they stay
// human-readable and hand-editable between runs.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	b = append(b, '\n')
	if err := WriteFileAtomic(path, b, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ReadJSON reads path and unmarshals it into v.
func ReadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read json: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// LoadOrInit reads path into v; if the file does not exist it persists the
// template produced by init and unmarshals that instead. Repeated calls on
// an existing store are read-only.
func LoadOrInit(path string, v any, init func() any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read json: %w", err)
		}
		tpl := init()
		if err := WriteJSON(path, tpl); err != nil {
			return err
		}
		b, err = json.Marshal(tpl)
		if err != nil {
			return fmt.Errorf("marshal template: %w", err)
		}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
