package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Format is a document encoding, derived from the file extension.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Decode parses a JSON or YAML document.
func Decode(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("source: parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("source: parse yaml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Encode writes doc as JSON or YAML.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("source: encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// LoadFile reads a JSON or YAML document.
func LoadFile(path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	if format == FormatSQLite {
		return Document{}, fmt.Errorf("%w: %s is a database, use Load", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("source: read %s: %w", path, err)
	}
	return Decode(data, format)
}

// Load reads a document of any supported format.
func Load(ctx context.Context, path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	if format == FormatSQLite {
		return LoadSQLite(ctx, path)
	}
	return LoadFile(path)
}

// Save writes doc to path in the format implied by its extension.
func Save(ctx context.Context, path string, doc Document) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if format == FormatSQLite {
		return SaveSQLite(ctx, path, doc)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("source: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("source: create %s: %w", path, err)
	}
	if err := Encode(f, doc, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
