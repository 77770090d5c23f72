// Package menu defines the restaurant catalog model for ordervox.
//
// A [Menu] is a read-only snapshot of everything a caller can order:
// categories, items with optional sizes, and modifier groups. The resolution
// pipeline (internal/match, internal/order) only ever reads a snapshot; menu
// editing happens through a [Store] and produces a fresh snapshot per request.
//
// Menus can be defined in YAML files ([LoadMenuFile], [LoadMenuFromReader])
// or persisted in PostgreSQL ([PostgresStore]).
//
// All store operations are safe for concurrent use.
package menu

// Restaurant holds the owner metadata attached to a menu.
type Restaurant struct {
	// Name is the restaurant's display name. It becomes the owner field of
	// built purchase orders.
	Name string `yaml:"name" json:"name"`

	// Currency is the ISO 4217 currency code for all prices on the menu
	// (e.g. "CAD").
	Currency string `yaml:"currency" json:"currency"`
}

// Menu is the full catalog snapshot used for one resolution pass.
type Menu struct {
	Restaurant Restaurant `yaml:"restaurant" json:"restaurant"`

	// Categories is the ordered list of category names as they appear on
	// the printed menu.
	Categories []string `yaml:"categories" json:"categories"`

	Items []Item `yaml:"items" json:"items"`

	ModifierGroups []ModifierGroup `yaml:"modifier_groups" json:"modifierGroups"`
}

// Item is a single orderable menu item.
type Item struct {
	// ID uniquely identifies the item within the menu.
	ID string `yaml:"id" json:"id"`

	// Name is the item's canonical display name.
	Name string `yaml:"name" json:"name"`

	// Aliases are alternate spoken forms of the name ("wings" for
	// "Original Wings"). Matching treats aliases the same as the name.
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Category places the item under one of Menu.Categories.
	Category string `yaml:"category" json:"category"`

	// BasePrice is the price before size adjustments and modifiers.
	// Must not be negative.
	BasePrice float64 `yaml:"base_price" json:"basePrice"`

	// Sizes lists the orderable sizes. When non-empty, the first entry is
	// the default size used when a caller does not name one.
	Sizes []Size `yaml:"sizes,omitempty" json:"sizes,omitempty"`

	// ModifierGroupIDs references ModifierGroup entries by ID.
	ModifierGroupIDs []string `yaml:"modifier_groups,omitempty" json:"modifierGroups,omitempty"`

	// Available marks whether the item can currently be ordered.
	// Unavailable items are invisible to matching.
	Available bool `yaml:"available" json:"available"`
}

// Size is one orderable size variant of an item.
type Size struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// PriceAdjustment is added to the item's base price. May be negative
	// (a small size can cost less than the base).
	PriceAdjustment float64 `yaml:"price_adjustment" json:"priceAdjustment"`
}

// ModifierGroup is a named set of add-ons with selection-count bounds.
type ModifierGroup struct {
	// ID uniquely identifies the group within the menu.
	ID string `yaml:"id" json:"id"`

	Name string `yaml:"name" json:"name"`

	// Required marks groups the kitchen expects a selection from
	// (e.g. a wing flavour). A required group must not be empty.
	Required bool `yaml:"required" json:"required"`

	// MinSelections and MaxSelections bound how many modifiers may be
	// chosen. Both are non-negative and MinSelections <= MaxSelections.
	MinSelections int `yaml:"min_selections" json:"minSelections"`
	MaxSelections int `yaml:"max_selections" json:"maxSelections"`

	Modifiers []Modifier `yaml:"modifiers" json:"modifiers"`
}

// Modifier is a single add-on within a group.
type Modifier struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Price is the non-negative surcharge for choosing this modifier.
	Price float64 `yaml:"price" json:"price"`
}

// Group returns the modifier group with the given ID.
func (m *Menu) Group(id string) (ModifierGroup, bool) {
	for _, g := range m.ModifierGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ModifierGroup{}, false
}

// ItemByID returns the item with the given ID.
func (m *Menu) ItemByID(id string) (Item, bool) {
	for _, it := range m.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
