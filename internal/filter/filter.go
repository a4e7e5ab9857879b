// Package filter derives the visible records of a page from its filter state.
package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matheuskafuri/devshelf/internal/dataset"
)

// All disables the category or difficulty filter.
const All = "all"

// State is the active category, difficulty and search text of one page.
// An empty Difficulty means the page has no difficulty filter.
type State struct {
	Category   string
	Difficulty string
	Search     string
}

// Default is the unfiltered state of a page with a difficulty filter.
func Default() State {
	return State{Category: All, Difficulty: All}
}

// Active reports whether any filter restricts the view.
func (s State) Active() bool {
	return s.categoryActive() || s.difficultyActive() || strings.TrimSpace(s.Search) != ""
}

func (s State) categoryActive() bool {
	return s.Category != All && s.Category != ""
}

func (s State) difficultyActive() bool {
	return s.Difficulty != All && s.Difficulty != ""
}

// ComputeView returns the records matching st, in their original order.
// It never modifies all and never fails: records with missing fields just
// don't match an active filter.
func ComputeView[R dataset.Record](all []R, st State) []R {
	lower := cases.Lower(language.Und)
	term := lower.String(strings.TrimSpace(st.Search))

	view := make([]R, 0, len(all))
	for _, r := range all {
		e := r.Meta()
		if st.categoryActive() && e.Category != st.Category {
			continue
		}
		if st.difficultyActive() {
			// Kinds without a difficulty (notes) skip this step.
			if d, ok := r.Level(); ok && string(d) != st.Difficulty {
				continue
			}
		}
		if term != "" && !matches(lower, e, term) {
			continue
		}
		view = append(view, r)
	}
	return view
}

// matches reports whether the lower-cased term is a substring of the
// lower-cased title, description, or any tag.
func matches(lower cases.Caser, e dataset.Entry, term string) bool {
	if strings.Contains(lower.String(e.Title), term) {
		return true
	}
	if strings.Contains(lower.String(e.Description), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(lower.String(tag), term) {
			return true
		}
	}
	return false
}
