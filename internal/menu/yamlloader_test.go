package menu

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMenuYAML = `
restaurant:
  name: Allstar Wings & Ribs
  currency: CAD
categories: [Wings, Sides]
items:
  - id: wings-original
    name: Original Wings
    aliases: [wings]
    category: Wings
    base_price: 14.99
    available: true
    sizes:
      - id: "1lb"
        name: 1 lb
        price_adjustment: 0
      - id: "2lb"
        name: 2 lb
        aliases: [two pounds]
        price_adjustment: 16.00
    modifier_groups: [sauce]
  - id: fries
    name: French Fries
    category: Sides
    base_price: 5.99
    available: true
modifier_groups:
  - id: sauce
    name: Wing Sauce
    required: true
    min_selections: 1
    max_selections: 2
    modifiers:
      - id: mild
        name: Mild
        price: 0
      - id: honey-garlic
        name: Honey Garlic
        aliases: [honey]
        price: 0
`

func TestLoadMenuFromReader(t *testing.T) {
	t.Parallel()

	m, err := LoadMenuFromReader(strings.NewReader(sampleMenuYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if m.Restaurant.Name != "Allstar Wings & Ribs" || m.Restaurant.Currency != "CAD" {
		t.Errorf("restaurant = %+v", m.Restaurant)
	}
	if len(m.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(m.Items))
	}

	wings, ok := m.ItemByID("wings-original")
	if !ok {
		t.Fatal("wings-original missing")
	}
	if len(wings.Sizes) != 2 || wings.Sizes[1].PriceAdjustment != 16.00 {
		t.Errorf("sizes = %+v", wings.Sizes)
	}
	if len(wings.ModifierGroupIDs) != 1 || wings.ModifierGroupIDs[0] != "sauce" {
		t.Errorf("modifier group refs = %v", wings.ModifierGroupIDs)
	}

	sauce, ok := m.Group("sauce")
	if !ok {
		t.Fatal("sauce group missing")
	}
	if !sauce.Required || sauce.MinSelections != 1 || sauce.MaxSelections != 2 {
		t.Errorf("sauce = %+v", sauce)
	}
	if sauce.Modifiers[1].Aliases[0] != "honey" {
		t.Errorf("modifier aliases = %v", sauce.Modifiers[1].Aliases)
	}
}

func TestLoadMenuFromReader_UnknownKeyRejected(t *testing.T) {
	t.Parallel()

	_, err := LoadMenuFromReader(strings.NewReader(`
restaurant:
  name: Test
  currency: CAD
menu_of_the_day: true
`))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadMenuFromReader_InvalidMenuRejected(t *testing.T) {
	t.Parallel()

	// Dangling modifier-group reference.
	_, err := LoadMenuFromReader(strings.NewReader(`
items:
  - id: wings
    name: Wings
    base_price: 10
    available: true
    modifier_groups: [missing]
`))
	if err == nil || !strings.Contains(err.Error(), "invalid menu") {
		t.Fatalf("err = %v, want invalid-menu error", err)
	}
}

func TestLoadMenuFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "menu.yaml")
	if err := os.WriteFile(path, []byte(sampleMenuYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMenuFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Items) != 2 {
		t.Errorf("items = %d, want 2", len(m.Items))
	}
}

func TestLoadMenuFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadMenuFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
