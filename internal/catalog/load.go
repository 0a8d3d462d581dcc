package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed modules.yaml
var defaultCatalog []byte

type document struct {
	Modules []Module `yaml:"modules"`
}

// Decode parses a YAML catalog and validates it. Unknown fields are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Reason: "empty catalog document"}
		}
		return nil, &ConfigurationError{Reason: "decode: " + err.Error(), Err: err}
	}
	return New(doc.Modules)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Decode(bytes.NewReader(defaultCatalog))
}

// Load picks the file at path when set, otherwise the bundled catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
