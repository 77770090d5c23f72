package orderlog

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemStore_Record(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	stored, err := s.Record(ctx, Entry{
		OrderID:       "ord-1",
		CustomerName:  "Dana",
		CustomerPhone: "555-0101",
		OrderType:     "pickup",
		Success:       true,
		Total:         48.56,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if stored.ID == "" {
		t.Error("record did not assign an ID")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("record did not assign CreatedAt")
	}

	got, err := s.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OrderID != "ord-1" || got.CustomerPhone != "555-0101" || !got.Success {
		t.Errorf("entry = %+v", got)
	}
}

func TestMemStore_GetNotFound(t *testing.T) {
	t.Parallel()
	s := NewMemStore()

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemStore_ListNewestFirst(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Record(ctx, Entry{OrderID: fmt.Sprintf("ord-%d", i)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for i, want := range []string{"ord-2", "ord-1", "ord-0"} {
		if entries[i].OrderID != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].OrderID, want)
		}
	}
}

func TestMemStore_ListFilters(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	phones := []string{"555-0101", "555-0202", "555-0101", "555-0101"}
	for i, phone := range phones {
		entry := Entry{OrderID: fmt.Sprintf("ord-%d", i), CustomerPhone: phone}
		if _, err := s.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	t.Run("by phone", func(t *testing.T) {
		entries, err := s.List(ctx, ListOptions{Phone: "555-0101"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("entries = %d, want 3", len(entries))
		}
		for _, e := range entries {
			if e.CustomerPhone != "555-0101" {
				t.Errorf("entry = %+v", e)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := s.List(ctx, ListOptions{Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		if entries[0].OrderID != "ord-3" {
			t.Errorf("entries[0] = %+v", entries[0])
		}
	})

	t.Run("phone and limit", func(t *testing.T) {
		entries, err := s.List(ctx, ListOptions{Phone: "555-0101", Limit: 1})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 1 || entries[0].OrderID != "ord-3" {
			t.Errorf("entries = %+v", entries)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		entries, err := s.List(ctx, ListOptions{Phone: "555-9999"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries = %+v, want none", entries)
		}
	})
}

func TestMemStore_ZeroValueUsable(t *testing.T) {
	t.Parallel()
	var s MemStore

	if _, err := s.Record(context.Background(), Entry{OrderID: "ord-1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	entries, err := s.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}
