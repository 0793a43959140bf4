// Package menu_test tests the menu catalog.
package menu_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dicelounge/loungebot/internal/menu"
)

func validCategories() map[string]string {
	return map[string]string{
		"drinks": "☕ Drinks",
		"food":   "🍔 Food",
	}
}

func validItems() map[string][]menu.Item {
	return map[string][]menu.Item{
		"drinks": {{Name: "Espresso", Price: 30000}, {Name: "Green Tea", Price: 25000}},
		"food":   {{Name: "Club Sandwich", Price: 50000}},
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		categories map[string]string
		items      map[string][]menu.Item
		wantErr    bool
	}{
		{
			name:       "valid catalog",
			categories: validCategories(),
			items:      validItems(),
		},
		{
			name:       "empty label",
			categories: map[string]string{"drinks": ""},
			items:      nil,
			wantErr:    true,
		},
		{
			name:       "duplicate label",
			categories: map[string]string{"drinks": "Menu", "food": "Menu"},
			items:      nil,
			wantErr:    true,
		},
		{
			name:       "items for unknown category",
			categories: validCategories(),
			items:      map[string][]menu.Item{"desserts": {{Name: "Cake", Price: 1}}},
			wantErr:    true,
		},
		{
			name:       "unnamed item",
			categories: validCategories(),
			items:      map[string][]menu.Item{"drinks": {{Name: "", Price: 1}}},
			wantErr:    true,
		},
		{
			name:       "duplicate item in category",
			categories: validCategories(),
			items:      map[string][]menu.Item{"drinks": {{Name: "Espresso", Price: 1}, {Name: "Espresso", Price: 2}}},
			wantErr:    true,
		},
		{
			name:       "negative price",
			categories: validCategories(),
			items:      map[string][]menu.Item{"drinks": {{Name: "Espresso", Price: -1}}},
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := menu.New(tc.categories, tc.items)
			if (err != nil) != tc.wantErr {
				t.Errorf("New: err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	c, err := menu.New(validCategories(), validItems())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Order is stable regardless of map iteration order: sorted by key.
	want := []string{"☕ Drinks", "🍔 Food"}
	if got := c.CategoryLabels(); !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryLabels() = %v, want %v", got, want)
	}

	if key, ok := c.KeyForLabel("☕ Drinks"); !ok || key != "drinks" {
		t.Errorf("KeyForLabel = (%q, %v), want (drinks, true)", key, ok)
	}
	if _, ok := c.KeyForLabel("Espresso"); ok {
		t.Error("KeyForLabel matched an item name")
	}

	if !c.HasItem("drinks", "Espresso") {
		t.Error("HasItem(drinks, Espresso) = false")
	}
	if c.HasItem("food", "Espresso") {
		t.Error("HasItem(food, Espresso) = true")
	}

	if price, ok := c.Price("Club Sandwich"); !ok || price != 50000 {
		t.Errorf("Price(Club Sandwich) = (%d, %v), want (50000, true)", price, ok)
	}
	if _, ok := c.Price("Mystery Special"); ok {
		t.Error("Price matched an unknown item")
	}

	if got := len(c.Items("drinks")); got != 2 {
		t.Errorf("Items(drinks) has %d entries, want 2", got)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "menu.json")
		doc := `{
			"categories": {"drinks": "☕ Drinks"},
			"items": {"drinks": [{"name": "Espresso", "price": 30000}]}
		}`
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		c, err := menu.Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if price, ok := c.Price("Espresso"); !ok || price != 30000 {
			t.Errorf("Price(Espresso) = (%d, %v), want (30000, true)", price, ok)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := menu.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("Load of a missing file succeeded")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "menu.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := menu.Load(path); err == nil {
			t.Error("Load of malformed JSON succeeded")
		}
	})
}
