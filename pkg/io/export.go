package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

// WriteJSON writes entries to w as an indented JSON array.
func WriteJSON(w io.Writer, entries []dashboard.Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(entries)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML writes entries to w as a YAML sequence.
func WriteYAML(w io.Writer, entries []dashboard.Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(entries)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes entries in the given format.
func Write(w io.Writer, entries []dashboard.Entry, format Format) error {
	switch format {
	case JSON:
		return WriteJSON(w, entries)
	case YAML:
		return WriteYAML(w, entries)
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
}

// ExportFile writes entries to path, choosing the format from the extension.
// The file is only created once encoding has succeeded.
func ExportFile(path string, entries []dashboard.Entry) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, entries, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
