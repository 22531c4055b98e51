// Package view holds the interaction state machine and the projection of a
// user set plus that state into a renderable page.
package view

import "github.com/actuallystonmai/country-directory/internal/domain"

type State = domain.UIState

// Initial is the state of a freshly mounted directory: nothing expanded,
// filter "all".
func Initial() State {
	return State{Filter: domain.FilterAll}
}

type Event interface {
	apply(State) State
}

// ToggleCountry collapses Country when it is the expanded one and otherwise
// expands it, implicitly collapsing whatever was open.
type ToggleCountry struct {
	Country string
}

func (e ToggleCountry) apply(s State) State {
	if s.IsOpen(e.Country) {
		s.Expanded, s.IsExpanded = "", false
		return s
	}
	s.Expanded, s.IsExpanded = e.Country, true
	return s
}

// SetFilter replaces the gender filter. The expanded country is untouched.
type SetFilter struct {
	Filter domain.GenderFilter
}

func (e SetFilter) apply(s State) State {
	s.Filter = e.Filter
	return s
}

// Reduce returns the state that follows s after e. It never mutates s.
func Reduce(s State, e Event) State {
	if e == nil {
		return s
	}
	return e.apply(s)
}
