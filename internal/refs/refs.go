// Package refs implements the per address space reference classification.
// Every address carries a rank that only ever increases during a run and a
// sticky faulty flag, together with the names that are bound to it.
package refs

import (
	"slices"
	"sort"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

// Rank is the classification level of a referenced address.
type Rank uint8

const (
	None  Rank = iota
	Maybe      // ambiguous 16 bit immediate, pointer or constant
	Data       // loaded as a value
	Exec       // control transfer target
	Sub        // internal label of a routine chain
	Main       // independent routine entry
)

var rankNames = [...]string{"none", "maybe", "data", "exec", "sub", "main"}

func (r Rank) String() string {
	if int(r) < len(rankNames) {
		return rankNames[r]
	}
	return "unknown"
}

// Class is the classification of an address.
type Class struct {
	Rank   Rank
	Faulty bool
}

// Is returns whether the class is the given rank and not faulty.
func (c Class) Is(rank Rank) bool {
	return !c.Faulty && c.Rank == rank
}

// Merge combines two classes. Ranks only increase and a faulty class
// ignores all later non faulty evidence.
func (c Class) Merge(other Class) Class {
	if c.Faulty && !other.Faulty {
		return c
	}
	return Class{
		Rank:   max(c.Rank, other.Rank),
		Faulty: c.Faulty || other.Faulty,
	}
}

func (c Class) String() string {
	if c.Faulty {
		return "faulty " + c.Rank.String()
	}
	return c.Rank.String()
}

// Binding is a name bound to an address.
type Binding struct {
	Address int
	Name    string
}

// Map classifies the addresses of one address space.
type Map struct {
	classes map[int]Class
	order   []int // insertion order of classified addresses

	names  map[int][]string
	lookup map[string]int
	bases  []int // sorted addresses that have a base name bound

	tracking   bool
	discovered set.Set[int]
}

// New returns a new empty reference map.
func New() *Map {
	return &Map{
		classes:    map[int]Class{},
		names:      map[int][]string{},
		lookup:     map[string]int{},
		discovered: set.New[int](),
	}
}

// Set raises the rank of the address to at least the given rank.
func (m *Map) Set(addr int, rank Rank) {
	m.merge(addr, Class{Rank: rank})
}

// SetFaulty raises the rank of the address and marks it permanently faulty.
func (m *Map) SetFaulty(addr int, rank Rank) {
	m.merge(addr, Class{Rank: rank, Faulty: true})
}

func (m *Map) merge(addr int, class Class) {
	existing, ok := m.classes[addr]
	if !ok {
		m.order = append(m.order, addr)
		if m.tracking {
			m.discovered.Add(addr)
		}
	}
	m.classes[addr] = existing.Merge(class)
}

// Get returns the class of the address, the zero class if it is unclassified.
func (m *Map) Get(addr int) Class {
	return m.classes[addr]
}

// Has returns whether the address has been classified.
func (m *Map) Has(addr int) bool {
	_, ok := m.classes[addr]
	return ok
}

// Len returns the number of classified addresses.
func (m *Map) Len() int {
	return len(m.classes)
}

// Each calls fn for all classified addresses in the order they were first classified.
func (m *Map) Each(fn func(addr int, class Class)) {
	for _, addr := range m.order {
		fn(addr, m.classes[addr])
	}
}

// Link binds a name to an address. The first name bound to an address is
// its canonical name, binding a name twice to the same address is ignored.
func (m *Map) Link(name string, addr int) bool {
	names := m.names[addr]
	if slices.Contains(names, name) {
		return false
	}
	m.names[addr] = append(names, name)

	if _, ok := m.lookup[name]; !ok {
		m.lookup[name] = addr
	}

	if !IsDerived(name) {
		i := sort.SearchInts(m.bases, addr)
		if i == len(m.bases) || m.bases[i] != addr {
			m.bases = slices.Insert(m.bases, i, addr)
		}
	}
	return true
}

// Unlink removes all names bound to the address and returns them.
func (m *Map) Unlink(addr int) []string {
	names, ok := m.names[addr]
	if !ok {
		return nil
	}
	delete(m.names, addr)

	for _, name := range names {
		if bound, ok := m.lookup[name]; ok && bound == addr {
			delete(m.lookup, name)
		}
	}

	i := sort.SearchInts(m.bases, addr)
	if i < len(m.bases) && m.bases[i] == addr {
		m.bases = slices.Delete(m.bases, i, i+1)
	}
	return names
}

// Links returns all names bound to the address, canonical name first.
func (m *Map) Links(addr int) []string {
	return m.names[addr]
}

// Name returns the canonical name of the address.
func (m *Map) Name(addr int) (string, bool) {
	names := m.names[addr]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Lookup returns the address that a name was first bound to.
func (m *Map) Lookup(name string) (int, bool) {
	addr, ok := m.lookup[name]
	return addr, ok
}

// Named returns all addresses that have a name bound, in ascending order.
func (m *Map) Named() []int {
	addresses := make([]int, 0, len(m.names))
	for addr := range m.names {
		addresses = append(addresses, addr)
	}
	slices.Sort(addresses)
	return addresses
}

// FindPrev returns the canonical base name bound at or below the address.
// Names derived from an offset to another name are never returned.
func (m *Map) FindPrev(addr int) (Binding, bool) {
	i := sort.Search(len(m.bases), func(i int) bool {
		return m.bases[i] > addr
	})
	for i--; i >= 0; i-- {
		base := m.bases[i]
		for _, name := range m.names[base] {
			if !IsDerived(name) {
				return Binding{Address: base, Name: name}, true
			}
		}
	}
	return Binding{}, false
}

// BeginTracking starts recording addresses that get classified for the first time.
func (m *Map) BeginTracking() {
	m.tracking = true
}

// IsNew returns whether the address was first classified after tracking began.
func (m *Map) IsNew(addr int) bool {
	return m.discovered.Contains(addr)
}

// IsDerived returns whether a name is an offset expression relative to another name.
func IsDerived(name string) bool {
	return strings.ContainsRune(name, '+')
}
