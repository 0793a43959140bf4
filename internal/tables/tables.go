// Package tables defines the fixed registry of valid table identifiers:
// numbered tables plus named special tables.
package tables

import "fmt"

// Registry is the enumerable set of valid table labels. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	labels []string
	index  map[string]bool
}

// NewRegistry builds a registry of tables "Table 1".."Table count" followed
// by the given special labels.
func NewRegistry(count int, specials []string) *Registry {
	r := &Registry{
		labels: make([]string, 0, count+len(specials)),
		index:  make(map[string]bool, count+len(specials)),
	}
	for i := 1; i <= count; i++ {
		r.add(fmt.Sprintf("Table %d", i))
	}
	for _, s := range specials {
		r.add(s)
	}
	return r
}

func (r *Registry) add(label string) {
	if r.index[label] {
		return
	}
	r.labels = append(r.labels, label)
	r.index[label] = true
}

// All returns every table label in display order.
func (r *Registry) All() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Contains reports whether label is a valid table identifier.
func (r *Registry) Contains(label string) bool {
	return r.index[label]
}
