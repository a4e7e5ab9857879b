package filter

// Event is a user action that changes the filter state.
type Event interface {
	apply(State) State
}

type SelectCategory struct{ ID string }

type SelectDifficulty struct{ Level string }

// SetSearch carries the raw search box text; normalization happens in
// ComputeView.
type SetSearch struct{ Text string }

// Reset clears every filter. Pages without a difficulty filter keep it
// disabled.
type Reset struct{}

func (e SelectCategory) apply(s State) State {
	if e.ID == "" {
		e.ID = All
	}
	s.Category = e.ID
	return s
}

func (e SelectDifficulty) apply(s State) State {
	if e.Level == "" {
		e.Level = All
	}
	s.Difficulty = e.Level
	return s
}

func (e SetSearch) apply(s State) State {
	s.Search = e.Text
	return s
}

func (Reset) apply(s State) State {
	next := State{Category: All}
	if s.Difficulty != "" {
		next.Difficulty = All
	}
	return next
}

// Apply returns the state after ev. The receiver is not modified.
func (s State) Apply(ev Event) State {
	if ev == nil {
		return s
	}
	return ev.apply(s)
}
