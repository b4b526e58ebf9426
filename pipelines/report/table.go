package report

import (
	"math"
	"sort"
)

// ID is a dense entity id, assigned in order of first sight starting at 0.
type ID = uint32

// NoID marks a JobInfo field whose entity was not present in the payload.
const NoID ID = math.MaxUint32

// EntityTable deduplicates entity names. A name keeps the id it was given on
// first sight for the lifetime of the table.
type EntityTable struct {
	Title  string
	lookup map[string]ID
	names  []string
}

func NewEntityTable(title string) *EntityTable {
	return &EntityTable{Title: title, lookup: make(map[string]ID)}
}

// Intern returns the id of name, assigning the next one if it is new.
func (t *EntityTable) Intern(name string) ID {
	if id, ok := t.lookup[name]; ok {
		return id
	}
	id := ID(len(t.names))
	t.names = append(t.names, name)
	t.lookup[name] = id
	return id
}

func (t *EntityTable) Lookup(name string) (ID, bool) {
	id, ok := t.lookup[name]
	return id, ok
}

// Name returns the entity behind id.
func (t *EntityTable) Name(id ID) (string, bool) {
	if int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

func (t *EntityTable) Len() int {
	return len(t.names)
}

// Names returns the entities in id order.
func (t *EntityTable) Names() []string {
	return t.names
}

// Sorted returns the entities in lexicographic order. The id order is left
// untouched so ids recorded on job records stay valid.
func (t *EntityTable) Sorted() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	sort.Strings(names)
	return names
}
