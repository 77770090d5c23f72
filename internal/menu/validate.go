package menu

import (
	"errors"
	"fmt"
)

// ValidateItem checks a single [Item] for the catalog invariants.
//
// Rules:
//   - ID and Name must be non-empty.
//   - BasePrice must not be negative.
//   - Size IDs must be unique within the item, each with a non-empty ID.
func ValidateItem(item Item) error {
	var errs []error

	if item.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if item.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if item.BasePrice < 0 {
		errs = append(errs, fmt.Errorf("base_price %.2f must not be negative", item.BasePrice))
	}

	sizeIDs := make(map[string]int, len(item.Sizes))
	for i, s := range item.Sizes {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("sizes[%d]: id must not be empty", i))
			continue
		}
		if prev, ok := sizeIDs[s.ID]; ok {
			errs = append(errs, fmt.Errorf("sizes[%d]: id %q is a duplicate of sizes[%d]", i, s.ID, prev))
		}
		sizeIDs[s.ID] = i
	}

	return errors.Join(errs...)
}

// ValidateGroup checks a single [ModifierGroup] for the catalog invariants.
//
// Rules:
//   - ID and Name must be non-empty.
//   - MinSelections and MaxSelections are non-negative with min <= max.
//   - A required group must contain at least one modifier.
//   - Modifier prices must not be negative.
func ValidateGroup(group ModifierGroup) error {
	var errs []error

	if group.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if group.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if group.MinSelections < 0 {
		errs = append(errs, fmt.Errorf("min_selections %d must not be negative", group.MinSelections))
	}
	if group.MaxSelections < 0 {
		errs = append(errs, fmt.Errorf("max_selections %d must not be negative", group.MaxSelections))
	}
	if group.MinSelections > group.MaxSelections {
		errs = append(errs, fmt.Errorf("min_selections %d exceeds max_selections %d", group.MinSelections, group.MaxSelections))
	}
	if group.Required && len(group.Modifiers) == 0 {
		errs = append(errs, errors.New("required group must contain at least one modifier"))
	}
	for i, mod := range group.Modifiers {
		if mod.ID == "" {
			errs = append(errs, fmt.Errorf("modifiers[%d]: id must not be empty", i))
		}
		if mod.Price < 0 {
			errs = append(errs, fmt.Errorf("modifiers[%d]: price %.2f must not be negative", i, mod.Price))
		}
	}

	return errors.Join(errs...)
}

// ValidateMenu checks a whole [Menu]: every item and group individually,
// uniqueness of IDs across the catalog, and that every modifier-group
// reference on an item resolves to a defined group.
func ValidateMenu(m *Menu) error {
	if m == nil {
		return errors.New("menu: menu must not be nil")
	}

	var errs []error

	groupIDs := make(map[string]int, len(m.ModifierGroups))
	for i, g := range m.ModifierGroups {
		if err := ValidateGroup(g); err != nil {
			errs = append(errs, fmt.Errorf("modifier_groups[%d] (%q): %w", i, g.Name, err))
		}
		if g.ID == "" {
			continue
		}
		if prev, ok := groupIDs[g.ID]; ok {
			errs = append(errs, fmt.Errorf("modifier_groups[%d]: id %q is a duplicate of modifier_groups[%d]", i, g.ID, prev))
		}
		groupIDs[g.ID] = i
	}

	itemIDs := make(map[string]int, len(m.Items))
	for i, it := range m.Items {
		if err := ValidateItem(it); err != nil {
			errs = append(errs, fmt.Errorf("items[%d] (%q): %w", i, it.Name, err))
		}
		if it.ID != "" {
			if prev, ok := itemIDs[it.ID]; ok {
				errs = append(errs, fmt.Errorf("items[%d]: id %q is a duplicate of items[%d]", i, it.ID, prev))
			}
			itemIDs[it.ID] = i
		}
		for _, ref := range it.ModifierGroupIDs {
			if _, ok := groupIDs[ref]; !ok {
				errs = append(errs, fmt.Errorf("items[%d] (%q): references undefined modifier group %q", i, it.Name, ref))
			}
		}
	}

	return errors.Join(errs...)
}
