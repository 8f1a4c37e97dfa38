package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

// Format is a serialization format for collections.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf returns the format matching path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// ParseFormat parses "json" or "yaml" (also "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported format %q (want json or yaml)", s)
}

// Document is the wrapped form of a collection.
type Document struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Dashboards []dashboard.Entry `json:"dashboards" yaml:"dashboards"`
}

// ReadJSON decodes a collection from r. The input is either a JSON array of
// entries or a [Document]. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]dashboard.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty input")
	}

	var entries []dashboard.Entry
	if data[0] == '{' {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
		}
		entries = doc.Dashboards
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dashboards")
	}
	return normalize(entries), nil
}

// ReadYAML decodes a collection from r. The input is either a sequence of
// entries or a mapping with a "dashboards" key. ReadYAML does not close r.
func ReadYAML(r io.Reader) ([]dashboard.Entry, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "empty input")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	var entries []dashboard.Entry
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&entries); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dashboards")
		}
	case yaml.MappingNode:
		var doc Document
		if err := node.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
		}
		entries = doc.Dashboards
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected a list or a mapping", node.Line)
	}
	return normalize(entries), nil
}

// Read decodes a collection in the given format.
func Read(r io.Reader, format Format) ([]dashboard.Entry, error) {
	switch format {
	case JSON:
		return ReadJSON(r)
	case YAML:
		return ReadYAML(r)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
}

// ImportFile reads the collection stored at path, choosing the format from
// the extension.
func ImportFile(path string) ([]dashboard.Entry, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	entries, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func normalize(entries []dashboard.Entry) []dashboard.Entry {
	if entries == nil {
		return []dashboard.Entry{}
	}
	return dashboard.Clone(entries)
}
