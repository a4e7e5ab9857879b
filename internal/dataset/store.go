// Package dataset holds the records and categories of one loaded document.
package dataset

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindNotes    Kind = "notes"
	KindPrograms Kind = "programs"
)

// Store is the full record collection of a page. It is built once from a
// decoded document and never changes afterwards.
type Store struct {
	kind       Kind
	records    []Record
	categories []Category
	byID       map[ID]int
}

func NewStore(kind Kind, records []Record, categories []Category) *Store {
	s := &Store{
		kind:       kind,
		records:    append([]Record(nil), records...),
		categories: append([]Category(nil), categories...),
		byID:       make(map[ID]int, len(records)),
	}
	for i, r := range s.records {
		id := r.Meta().ID
		if _, dup := s.byID[id]; !dup {
			s.byID[id] = i
		}
	}
	return s
}

func (s *Store) Kind() Kind { return s.kind }

func (s *Store) Len() int { return len(s.records) }

// Records returns the records in document order. The slice is a copy.
func (s *Store) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Categories returns the categories in document order. The slice is a copy.
func (s *Store) Categories() []Category {
	return append([]Category(nil), s.categories...)
}

// Lookup finds a record by id. With duplicate ids the first one wins.
func (s *Store) Lookup(id ID) (Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.records[i], true
}

// CategoryName resolves a category id to its display name, falling back to
// the id itself for categories the document does not list.
func (s *Store) CategoryName(id string) string {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// Decode parses a notes.json or programs.json document into a Store.
func Decode(kind Kind, raw []byte) (*Store, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s document: %w", kind, err)
	}

	var records []Record
	switch kind {
	case KindNotes:
		records = make([]Record, 0, len(doc.Notes))
		for _, n := range doc.Notes {
			records = append(records, n)
		}
	case KindPrograms:
		records = make([]Record, 0, len(doc.Programs))
		for _, p := range doc.Programs {
			records = append(records, p)
		}
	default:
		return nil, fmt.Errorf("unknown dataset kind %q", kind)
	}
	return NewStore(kind, records, doc.Categories), nil
}

// CountDrift is a category whose declared count disagrees with the number of
// records that reference it.
type CountDrift struct {
	Category Category
	Declared int
	Actual   int
}

func (d CountDrift) String() string {
	return fmt.Sprintf("category %q declares %d records, found %d", d.Category.ID, d.Declared, d.Actual)
}

// CheckCounts reports every category with a declared count that does not
// match the store. Categories without a count are skipped.
func CheckCounts(s *Store) []CountDrift {
	actual := make(map[string]int)
	for _, r := range s.records {
		actual[r.Meta().Category]++
	}
	var drifts []CountDrift
	for _, c := range s.categories {
		if c.Count == nil {
			continue
		}
		if n := actual[c.ID]; n != *c.Count {
			drifts = append(drifts, CountDrift{Category: c, Declared: *c.Count, Actual: n})
		}
	}
	return drifts
}

// UnknownCategories lists category ids used by records but missing from the
// document's category list, in first-seen order.
func UnknownCategories(s *Store) []string {
	known := make(map[string]bool, len(s.categories))
	for _, c := range s.categories {
		known[c.ID] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.records {
		id := r.Meta().Category
		if !known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
