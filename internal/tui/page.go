package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/devshelf/internal/dataset"
	"github.com/matheuskafuri/devshelf/internal/filter"
	"github.com/matheuskafuri/devshelf/internal/loader"
)

// page is one dataset (notes or programs) with its own filter state.
type page struct {
	kind  dataset.Kind
	title string
	url   string

	store *dataset.Store
	state filter.State
	view  []dataset.Record

	cursor  int
	loading bool
	// stale marks a load in flight that started before the file last changed.
	stale bool
	err   error

	categories   tabBar
	difficulties *tabBar
}

func newPage(kind dataset.Kind, url string, difficulties []string) *page {
	p := &page{
		kind: kind,
		url:  url,
	}
	switch kind {
	case dataset.KindPrograms:
		p.title = "Programs"
		p.state = filter.Default()
		bar := newTabBar("All", difficultyTabs(difficulties))
		p.difficulties = &bar
	default:
		p.title = "Notes"
		p.state = filter.State{Category: filter.All}
	}
	p.categories = newTabBar(p.allLabel(), nil)
	return p
}

func (p *page) allLabel() string {
	if p.kind == dataset.KindNotes {
		return "All Notes"
	}
	return "All"
}

func (p *page) loaded() bool { return p.store != nil }

func (p *page) setStore(s *dataset.Store) {
	p.store = s
	p.err = nil
	p.loading = false
	p.categories = newTabBar(p.allLabel(), categoryTabs(s.Categories()))
	p.categories.point(p.state.Category)
	p.recompute()
}

func (p *page) setError(err error) {
	p.err = err
	p.loading = false
}

// dispatch applies a filter event and recomputes the view.
func (p *page) dispatch(ev filter.Event) {
	next := p.state.Apply(ev)
	if next == p.state {
		return
	}
	p.state = next
	p.cursor = 0
	p.recompute()
}

func (p *page) recompute() {
	if p.store == nil {
		p.view = nil
		return
	}
	p.view = filter.ComputeView(p.store.Records(), p.state)
	if p.cursor >= len(p.view) {
		p.cursor = max(0, len(p.view)-1)
	}
}

func (p *page) selected() dataset.Record {
	if p.cursor < len(p.view) {
		return p.view[p.cursor]
	}
	return nil
}

func (p *page) emptyMessage() string {
	if p.kind == dataset.KindPrograms {
		return "No programs found matching your filters."
	}
	return "No notes found matching your criteria."
}

// filterLabel summarizes the active filters for the status bar.
func (p *page) filterLabel() string {
	label := ""
	if p.state.Category != filter.All && p.state.Category != "" {
		label = p.categories.label(p.state.Category)
	}
	if p.difficulties != nil && p.state.Difficulty != filter.All && p.state.Difficulty != "" {
		if label != "" {
			label += " · "
		}
		label += p.state.Difficulty
	}
	if label == "" {
		return "All"
	}
	return label
}

// loadPageCmd performs the page's one fetch. The loader memoizes, so
// revisiting a page does not hit the network again.
func loadPageCmd(l *loader.Loader, kind dataset.Kind, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		raw, err := l.Load(ctx, url)
		if err != nil {
			return pageLoadedMsg{kind: kind, err: err}
		}
		store, err := dataset.Decode(kind, raw)
		if err != nil {
			return pageLoadedMsg{kind: kind, err: &loader.ParseError{URL: url, Err: err}}
		}
		return pageLoadedMsg{kind: kind, store: store}
	}
}

func loadErrorText(err error) string {
	return fmt.Sprintf("Could not load data: %v", err)
}
