package menu

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMenuFile reads, parses, and validates a menu YAML file from disk.
//
// Example:
//
//	restaurant:
//	  name: "Allstar Wings & Ribs"
//	  currency: "CAD"
//	categories: ["Wings", "Ribs", "Sides"]
//	items:
//	  - id: wings-original
//	    name: "Original Wings"
//	    aliases: ["wings"]
//	    category: "Wings"
//	    base_price: 14.99
//	    available: true
func LoadMenuFile(path string) (*Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("menu: open menu file %q: %w", path, err)
	}
	defer f.Close()

	m, err := LoadMenuFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("menu: parse menu file %q: %w", path, err)
	}
	return m, nil
}

// LoadMenuFromReader parses and validates menu YAML from an [io.Reader].
// The reader is consumed entirely; the caller is responsible for closing it.
func LoadMenuFromReader(r io.Reader) (*Menu, error) {
	var m Menu
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("menu: decode menu yaml: %w", err)
	}
	if err := ValidateMenu(&m); err != nil {
		return nil, fmt.Errorf("menu: invalid menu: %w", err)
	}
	return &m, nil
}
