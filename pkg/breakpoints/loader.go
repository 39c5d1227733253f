/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: loader.go
Description: File loaders for breakpoint tables. Supports YAML and JSON
documents with a list of breakpoint entries and an optional organism group
mapping. SQLite databases are handled in sqlite.go.
*/

package breakpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk layout of a breakpoint table
type Document struct {
	Guideline   string              `json:"guideline,omitempty" yaml:"guideline,omitempty"`
	Groups      map[string][]string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Breakpoints []Entry             `json:"breakpoints" yaml:"breakpoints"`
}

// ParseYAML builds a table from a YAML document
func ParseYAML(data []byte) (*Table, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse breakpoint yaml: %w", err)
	}
	return NewTable(doc.Breakpoints, doc.Groups)
}

// ParseJSON builds a table from a JSON document
func ParseJSON(data []byte) (*Table, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse breakpoint json: %w", err)
	}
	return NewTable(doc.Breakpoints, doc.Groups)
}

// LoadFile loads a table from disk, choosing the decoder by file extension.
// .yaml/.yml, .json and .db/.sqlite/.sqlite3 are supported.
func LoadFile(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read breakpoint file: %w", err)
	}

	switch ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported breakpoint file extension %q", ext)
	}
}

// MarshalYAML serializes a table back into its document form
func MarshalYAML(t *Table, guideline string) ([]byte, error) {
	doc := Document{
		Guideline:   guideline,
		Groups:      t.Groups(),
		Breakpoints: t.Entries(),
	}
	if len(doc.Groups) == 0 {
		doc.Groups = nil
	}
	return yaml.Marshal(&doc)
}

// SaveFile writes a table to disk, choosing the encoder by file extension
func SaveFile(path string, t *Table, guideline string) error {
	ext := strings.ToLower(filepath.Ext(path))
	var data []byte
	var err error

	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		return SaveSQLite(path, t)
	case ".yaml", ".yml":
		data, err = MarshalYAML(t, guideline)
	case ".json":
		data, err = json.MarshalIndent(Document{
			Guideline:   guideline,
			Groups:      t.Groups(),
			Breakpoints: t.Entries(),
		}, "", "  ")
	default:
		return fmt.Errorf("unsupported breakpoint file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("encode breakpoint table: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create breakpoint directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write breakpoint file: %w", err)
	}
	return nil
}
