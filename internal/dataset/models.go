package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ID is a record identifier. The site's JSON uses strings for notes and
// numbers for programs, so both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Entry holds the fields every card shares.
type Entry struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

type Note struct {
	Entry
	Content string `json:"content"`
}

type Program struct {
	Entry
	Difficulty  Difficulty `json:"difficulty"`
	Code        string     `json:"code"`
	Explanation string     `json:"explanation"`
}

// Record is a Note or a Program.
type Record interface {
	Meta() Entry
	// Level returns the record's difficulty; ok is false for kinds that have
	// none.
	Level() (d Difficulty, ok bool)
}

func (n Note) Meta() Entry                  { return n.Entry }
func (n Note) Level() (Difficulty, bool)    { return "", false }
func (p Program) Meta() Entry               { return p.Entry }
func (p Program) Level() (Difficulty, bool) { return p.Difficulty, true }

// Category groups records. Icon is set for notes, Count for programs; Count
// is whatever the document declares and is not derived from the records.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Count *int   `json:"count,omitempty"`
}

// Label is the text shown on the category's filter tab.
func (c Category) Label() string {
	if c.Count != nil {
		return c.Name + " (" + strconv.Itoa(*c.Count) + ")"
	}
	return c.Name
}

// Document is the shape of notes.json and programs.json.
type Document struct {
	Categories []Category `json:"categories"`
	Notes      []Note     `json:"notes,omitempty"`
	Programs   []Program  `json:"programs,omitempty"`
}
