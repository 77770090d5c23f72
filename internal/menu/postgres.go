package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the catalog tables. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS menu_meta (
    id          INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    restaurant  JSONB NOT NULL DEFAULT '{}',
    categories  JSONB NOT NULL DEFAULT '[]',
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS menu_items (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    aliases         JSONB NOT NULL DEFAULT '[]',
    category        TEXT NOT NULL DEFAULT '',
    base_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
    sizes           JSONB NOT NULL DEFAULT '[]',
    modifier_groups JSONB NOT NULL DEFAULT '[]',
    available       BOOLEAN NOT NULL DEFAULT true,
    position        INT NOT NULL DEFAULT 0,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS modifier_groups (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    required       BOOLEAN NOT NULL DEFAULT false,
    min_selections INT NOT NULL DEFAULT 0,
    max_selections INT NOT NULL DEFAULT 0,
    modifiers      JSONB NOT NULL DEFAULT '[]',
    position       INT NOT NULL DEFAULT 0,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_menu_items_category ON menu_items(category);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. Structured
// sub-fields (aliases, sizes, embedded modifiers) are serialised as JSONB.
// Item and group ordering follows the position column so the catalog keeps
// its printed-menu order across round trips.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// catalog tables and indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("menu: migrate: %w", err)
	}
	return nil
}

// Snapshot implements [Store.Snapshot].
func (s *PostgresStore) Snapshot(ctx context.Context) (*Menu, error) {
	m := &Menu{}

	var restaurantJSON, categoriesJSON []byte
	err := s.db.QueryRow(ctx, `SELECT restaurant, categories FROM menu_meta WHERE id = 1`).
		Scan(&restaurantJSON, &categoriesJSON)
	switch {
	case err == nil:
		if err := json.Unmarshal(restaurantJSON, &m.Restaurant); err != nil {
			return nil, fmt.Errorf("menu: unmarshal restaurant: %w", err)
		}
		if err := json.Unmarshal(categoriesJSON, &m.Categories); err != nil {
			return nil, fmt.Errorf("menu: unmarshal categories: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// No meta row yet; empty restaurant metadata is fine.
	default:
		return nil, fmt.Errorf("menu: load meta: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, aliases, category, base_price, sizes, modifier_groups, available
		FROM menu_items ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("menu: load items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		var aliasesJSON, sizesJSON, groupsJSON []byte
		if err := rows.Scan(&it.ID, &it.Name, &aliasesJSON, &it.Category,
			&it.BasePrice, &sizesJSON, &groupsJSON, &it.Available); err != nil {
			return nil, fmt.Errorf("menu: scan item: %w", err)
		}
		if err := json.Unmarshal(aliasesJSON, &it.Aliases); err != nil {
			return nil, fmt.Errorf("menu: unmarshal item %q aliases: %w", it.ID, err)
		}
		if err := json.Unmarshal(sizesJSON, &it.Sizes); err != nil {
			return nil, fmt.Errorf("menu: unmarshal item %q sizes: %w", it.ID, err)
		}
		if err := json.Unmarshal(groupsJSON, &it.ModifierGroupIDs); err != nil {
			return nil, fmt.Errorf("menu: unmarshal item %q modifier groups: %w", it.ID, err)
		}
		m.Items = append(m.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("menu: iterate items: %w", err)
	}

	groupRows, err := s.db.Query(ctx, `
		SELECT id, name, required, min_selections, max_selections, modifiers
		FROM modifier_groups ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("menu: load groups: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var g ModifierGroup
		var modsJSON []byte
		if err := groupRows.Scan(&g.ID, &g.Name, &g.Required,
			&g.MinSelections, &g.MaxSelections, &modsJSON); err != nil {
			return nil, fmt.Errorf("menu: scan group: %w", err)
		}
		if err := json.Unmarshal(modsJSON, &g.Modifiers); err != nil {
			return nil, fmt.Errorf("menu: unmarshal group %q modifiers: %w", g.ID, err)
		}
		m.ModifierGroups = append(m.ModifierGroups, g)
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("menu: iterate groups: %w", err)
	}

	return m, nil
}

// Replace implements [Store.Replace]. The previous catalog is removed and
// the new one inserted with positions preserving menu order.
func (s *PostgresStore) Replace(ctx context.Context, m *Menu) error {
	if err := ValidateMenu(m); err != nil {
		return fmt.Errorf("menu: replace: %w", err)
	}

	restaurantJSON, err := json.Marshal(m.Restaurant)
	if err != nil {
		return fmt.Errorf("menu: marshal restaurant: %w", err)
	}
	categoriesJSON, err := json.Marshal(emptySlice(m.Categories))
	if err != nil {
		return fmt.Errorf("menu: marshal categories: %w", err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM menu_items`); err != nil {
		return fmt.Errorf("menu: clear items: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM modifier_groups`); err != nil {
		return fmt.Errorf("menu: clear groups: %w", err)
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO menu_meta (id, restaurant, categories, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			restaurant = EXCLUDED.restaurant,
			categories = EXCLUDED.categories,
			updated_at = now()`,
		restaurantJSON, categoriesJSON); err != nil {
		return fmt.Errorf("menu: store meta: %w", err)
	}

	for i, it := range m.Items {
		if err := s.upsertItemAt(ctx, it, i); err != nil {
			return err
		}
	}
	for i, g := range m.ModifierGroups {
		if err := s.upsertGroupAt(ctx, g, i); err != nil {
			return err
		}
	}
	return nil
}

// UpsertItem implements [Store.UpsertItem]. New items are appended at the
// end of the menu.
func (s *PostgresStore) UpsertItem(ctx context.Context, item Item) error {
	if err := ValidateItem(item); err != nil {
		return fmt.Errorf("menu: upsert item %q: %w", item.ID, err)
	}
	var next int
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(MAX(position)+1, 0) FROM menu_items`).Scan(&next); err != nil {
		return fmt.Errorf("menu: next item position: %w", err)
	}
	return s.upsertItemAt(ctx, item, next)
}

func (s *PostgresStore) upsertItemAt(ctx context.Context, item Item, pos int) error {
	aliasesJSON, err := json.Marshal(emptySlice(item.Aliases))
	if err != nil {
		return fmt.Errorf("menu: marshal item %q aliases: %w", item.ID, err)
	}
	sizesJSON, err := json.Marshal(emptySizeSlice(item.Sizes))
	if err != nil {
		return fmt.Errorf("menu: marshal item %q sizes: %w", item.ID, err)
	}
	groupsJSON, err := json.Marshal(emptySlice(item.ModifierGroupIDs))
	if err != nil {
		return fmt.Errorf("menu: marshal item %q modifier groups: %w", item.ID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO menu_items (id, name, aliases, category, base_price, sizes, modifier_groups, available, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			aliases = EXCLUDED.aliases,
			category = EXCLUDED.category,
			base_price = EXCLUDED.base_price,
			sizes = EXCLUDED.sizes,
			modifier_groups = EXCLUDED.modifier_groups,
			available = EXCLUDED.available,
			updated_at = now()`,
		item.ID, item.Name, aliasesJSON, item.Category, item.BasePrice,
		sizesJSON, groupsJSON, item.Available, pos)
	if err != nil {
		return fmt.Errorf("menu: upsert item %q: %w", item.ID, err)
	}
	return nil
}

// RemoveItem implements [Store.RemoveItem].
func (s *PostgresStore) RemoveItem(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("menu: remove item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertGroup implements [Store.UpsertGroup]. New groups are appended at
// the end of the group list.
func (s *PostgresStore) UpsertGroup(ctx context.Context, group ModifierGroup) error {
	if err := ValidateGroup(group); err != nil {
		return fmt.Errorf("menu: upsert group %q: %w", group.ID, err)
	}
	var next int
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(MAX(position)+1, 0) FROM modifier_groups`).Scan(&next); err != nil {
		return fmt.Errorf("menu: next group position: %w", err)
	}
	return s.upsertGroupAt(ctx, group, next)
}

func (s *PostgresStore) upsertGroupAt(ctx context.Context, group ModifierGroup, pos int) error {
	modsJSON, err := json.Marshal(emptyModifierSlice(group.Modifiers))
	if err != nil {
		return fmt.Errorf("menu: marshal group %q modifiers: %w", group.ID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO modifier_groups (id, name, required, min_selections, max_selections, modifiers, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			required = EXCLUDED.required,
			min_selections = EXCLUDED.min_selections,
			max_selections = EXCLUDED.max_selections,
			modifiers = EXCLUDED.modifiers,
			updated_at = now()`,
		group.ID, group.Name, group.Required, group.MinSelections,
		group.MaxSelections, modsJSON, pos)
	if err != nil {
		return fmt.Errorf("menu: upsert group %q: %w", group.ID, err)
	}
	return nil
}

// RemoveGroup implements [Store.RemoveGroup].
func (s *PostgresStore) RemoveGroup(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM modifier_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("menu: remove group %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// emptySlice normalises a nil slice to an empty one so JSONB columns store
// [] rather than null.
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptySizeSlice(s []Size) []Size {
	if s == nil {
		return []Size{}
	}
	return s
}

func emptyModifierSlice(s []Modifier) []Modifier {
	if s == nil {
		return []Modifier{}
	}
	return s
}
