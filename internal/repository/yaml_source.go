package repository

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// LoadEmbedded builds the catalog compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return ParseYAML(embeddedCatalog)
}

// LoadYAMLFile builds a catalog from a YAML document on disk.  The
// document has the same shape as the embedded one.
func LoadYAMLFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a catalog document.  Unknown fields are rejected so a
// typo in a seed file fails startup instead of silently dropping data.
func ParseYAML(data []byte) (*Catalog, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(seed)
}
