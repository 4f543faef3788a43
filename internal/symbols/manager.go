// Package symbols provides symbol file parsing and generic symbol management
// for names bound to addresses.
package symbols

import (
	"slices"

	"github.com/retroenv/retrogolib/set"
)

// Manager provides generic symbol tracking with usage marking.
// T is the type of symbol being managed (e.g., Constant).
type Manager[T any] struct {
	items map[int]T
	used  set.Set[int]
}

// New creates a new symbol manager.
func New[T any]() *Manager[T] {
	return &Manager[T]{
		items: make(map[int]T),
		used:  set.New[int](),
	}
}

// Get returns the item at the given address.
func (m *Manager[T]) Get(address int) (T, bool) {
	item, ok := m.items[address]
	return item, ok
}

// Set sets the item at the given address.
func (m *Manager[T]) Set(address int, item T) {
	m.items[address] = item
}

// Has returns whether an item exists at the given address.
func (m *Manager[T]) Has(address int) bool {
	_, ok := m.items[address]
	return ok
}

// Len returns the number of items in the manager.
func (m *Manager[T]) Len() int {
	return len(m.items)
}

// MarkUsed marks an address as used.
func (m *Manager[T]) MarkUsed(address int) {
	m.used.Add(address)
}

// IsUsed returns whether an address is marked as used.
func (m *Manager[T]) IsUsed(address int) bool {
	return m.used.Contains(address)
}

// Used returns all used items in ascending address order.
func (m *Manager[T]) Used() []T {
	addresses := make([]int, 0, len(m.used))
	for address := range m.used {
		if _, ok := m.items[address]; ok {
			addresses = append(addresses, address)
		}
	}
	slices.Sort(addresses)

	items := make([]T, 0, len(addresses))
	for _, address := range addresses {
		items = append(items, m.items[address])
	}
	return items
}
