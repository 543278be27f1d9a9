package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a workflow definition. Unknown fields are rejected.
// The returned workflow is not validated yet.
func ParseYAML(data []byte) (*Workflow, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var w Workflow
	if err := dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("workflow definition is empty")
		}
		return nil, fmt.Errorf("failed to parse workflow yaml: %w", err)
	}
	return &w, nil
}

// ParseJSON decodes a workflow definition previously stored by the engine.
func ParseJSON(data []byte) (*Workflow, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w Workflow
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to parse workflow json: %w", err)
	}
	return &w, nil
}

// LoadFromFile reads a .yaml, .yml or .json workflow definition.
func LoadFromFile(filename string) (*Workflow, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", filename, err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return ParseJSON(data)
	default:
		return ParseYAML(data)
	}
}
