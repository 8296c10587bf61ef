// Package hookfile reads hook documents from disk and writes them back
// atomically. The format follows the file extension: .json, .yaml or .yml.
package hookfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// Format is a hook file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the on-disk form of a hook. Context is optional and names the
// node the hook belongs to.
type Document struct {
	Context *core.HookContext `json:"context,omitempty" yaml:"context,omitempty"`
	Hook    core.Hook         `json:"hook" yaml:"hook"`
}

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", core.ErrValidation(core.CodeInvalidHookFile,
			fmt.Sprintf("unsupported hook file extension %q (use .json, .yaml or .yml)", filepath.Ext(path)))
	}
}

// Read loads a hook document.
func Read(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hook file: %w", err)
	}
	doc, err := Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Unmarshal decodes a hook document.
func Unmarshal(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, core.ErrValidation(core.CodeInvalidHookFile, fmt.Sprintf("unknown format %q", format))
	}
	if err != nil {
		return nil, core.ErrValidation(core.CodeInvalidHookFile, "decoding hook document").WithCause(err)
	}
	return &doc, nil
}

// Marshal encodes a hook document.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, core.ErrValidation(core.CodeInvalidHookFile, fmt.Sprintf("unknown format %q", format))
	}
}

// Write stores doc at path atomically, creating parent directories.
func Write(path string, doc *Document) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return fmt.Errorf("encoding hook document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := atomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing hook file: %w", err)
	}
	return nil
}
