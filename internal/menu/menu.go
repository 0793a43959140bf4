// Package menu provides the read-only menu catalog: category labels and the
// priced items within each category, loaded once at startup from a JSON file.
package menu

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Item is a single orderable menu entry. Price is in whole currency units.
type Item struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// catalogFile mirrors the on-disk JSON document.
type catalogFile struct {
	Categories map[string]string `json:"categories"`
	Items      map[string][]Item `json:"items"`
}

// Catalog is the immutable menu catalog. Lookups are safe for concurrent use.
type Catalog struct {
	labels map[string]string // category key -> display label
	keys   map[string]string // display label -> category key
	items  map[string][]Item // category key -> items
	order  []string          // category keys in stable display order
	prices map[string]int64  // item name -> unit price
}

// Load reads and validates the catalog from the JSON file at path.
// Item names must be unique within a category and prices non-negative.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse menu file: %w", err)
	}

	return New(file.Categories, file.Items)
}

// New builds a catalog from already-decoded category and item maps.
func New(categories map[string]string, items map[string][]Item) (*Catalog, error) {
	c := &Catalog{
		labels: make(map[string]string, len(categories)),
		keys:   make(map[string]string, len(categories)),
		items:  make(map[string][]Item, len(items)),
		prices: make(map[string]int64),
	}

	for key, label := range categories {
		if label == "" {
			return nil, fmt.Errorf("category %q has an empty label", key)
		}
		if prev, dup := c.keys[label]; dup {
			return nil, fmt.Errorf("categories %q and %q share label %q", prev, key, label)
		}
		c.labels[key] = label
		c.keys[label] = key
		c.order = append(c.order, key)
	}
	// JSON objects carry no ordering, so keyboards get a stable sorted order.
	sort.Strings(c.order)

	for key, list := range items {
		if _, known := c.labels[key]; !known {
			return nil, fmt.Errorf("items reference unknown category %q", key)
		}
		seen := make(map[string]bool, len(list))
		for _, item := range list {
			if item.Name == "" {
				return nil, fmt.Errorf("category %q contains an unnamed item", key)
			}
			if seen[item.Name] {
				return nil, fmt.Errorf("duplicate item %q in category %q", item.Name, key)
			}
			if item.Price < 0 {
				return nil, fmt.Errorf("item %q has a negative price", item.Name)
			}
			seen[item.Name] = true
			if _, exists := c.prices[item.Name]; !exists {
				c.prices[item.Name] = item.Price
			}
		}
		c.items[key] = list
	}

	return c, nil
}

// CategoryLabels returns the display labels of all categories in stable order.
func (c *Catalog) CategoryLabels() []string {
	labels := make([]string, 0, len(c.order))
	for _, key := range c.order {
		labels = append(labels, c.labels[key])
	}
	return labels
}

// KeyForLabel resolves a category display label to its key.
func (c *Catalog) KeyForLabel(label string) (string, bool) {
	key, ok := c.keys[label]
	return key, ok
}

// Label returns the display label for a category key.
func (c *Catalog) Label(key string) (string, bool) {
	label, ok := c.labels[key]
	return label, ok
}

// Items returns the items of the given category in menu order.
func (c *Catalog) Items(key string) []Item {
	return c.items[key]
}

// HasItem reports whether the named item belongs to the given category.
func (c *Catalog) HasItem(key, name string) bool {
	for _, item := range c.items[key] {
		if item.Name == name {
			return true
		}
	}
	return false
}

// Price returns the unit price of the named item. Unknown items report ok
// false and are billed as zero by the caller.
func (c *Catalog) Price(name string) (int64, bool) {
	price, ok := c.prices[name]
	return price, ok
}
