package menu

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// It is the default catalog backend when no database is configured.
// The zero value is an empty, usable store.
type MemStore struct {
	mu   sync.RWMutex
	menu Menu
}

// NewMemStore returns a [MemStore] seeded with the given menu. The menu is
// validated and deep-copied; the caller keeps ownership of m.
func NewMemStore(m *Menu) (*MemStore, error) {
	s := &MemStore{}
	if m != nil {
		if err := s.Replace(context.Background(), m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Snapshot implements [Store.Snapshot].
func (s *MemStore) Snapshot(ctx context.Context) (*Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := cloneMenu(&s.menu)
	return out, nil
}

// Replace implements [Store.Replace].
func (s *MemStore) Replace(ctx context.Context, m *Menu) error {
	if err := ValidateMenu(m); err != nil {
		return fmt.Errorf("menu: replace: %w", err)
	}
	clone := cloneMenu(m)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = *clone
	return nil
}

// UpsertItem implements [Store.UpsertItem].
func (s *MemStore) UpsertItem(ctx context.Context, item Item) error {
	if err := ValidateItem(item); err != nil {
		return fmt.Errorf("menu: upsert item %q: %w", item.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.menu.Items {
		if it.ID == item.ID {
			s.menu.Items[i] = item
			return nil
		}
	}
	s.menu.Items = append(s.menu.Items, item)
	return nil
}

// RemoveItem implements [Store.RemoveItem].
func (s *MemStore) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.menu.Items {
		if it.ID == id {
			s.menu.Items = slices.Delete(s.menu.Items, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

// UpsertGroup implements [Store.UpsertGroup].
func (s *MemStore) UpsertGroup(ctx context.Context, group ModifierGroup) error {
	if err := ValidateGroup(group); err != nil {
		return fmt.Errorf("menu: upsert group %q: %w", group.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.menu.ModifierGroups {
		if g.ID == group.ID {
			s.menu.ModifierGroups[i] = group
			return nil
		}
	}
	s.menu.ModifierGroups = append(s.menu.ModifierGroups, group)
	return nil
}

// RemoveGroup implements [Store.RemoveGroup].
func (s *MemStore) RemoveGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.menu.ModifierGroups {
		if g.ID == id {
			s.menu.ModifierGroups = slices.Delete(s.menu.ModifierGroups, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

// cloneMenu returns a deep copy of m so snapshots never alias store state.
func cloneMenu(m *Menu) *Menu {
	out := &Menu{
		Restaurant: m.Restaurant,
		Categories: slices.Clone(m.Categories),
	}
	out.Items = make([]Item, len(m.Items))
	for i, it := range m.Items {
		c := it
		c.Aliases = slices.Clone(it.Aliases)
		c.ModifierGroupIDs = slices.Clone(it.ModifierGroupIDs)
		c.Sizes = make([]Size, len(it.Sizes))
		for j, sz := range it.Sizes {
			cs := sz
			cs.Aliases = slices.Clone(sz.Aliases)
			c.Sizes[j] = cs
		}
		out.Items[i] = c
	}
	out.ModifierGroups = make([]ModifierGroup, len(m.ModifierGroups))
	for i, g := range m.ModifierGroups {
		cg := g
		cg.Modifiers = make([]Modifier, len(g.Modifiers))
		for j, mod := range g.Modifiers {
			cm := mod
			cm.Aliases = slices.Clone(mod.Aliases)
			cg.Modifiers[j] = cm
		}
		out.ModifierGroups[i] = cg
	}
	return out
}
