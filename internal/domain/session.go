package domain

import "time"

// UIState is what the viewer has selected: at most one expanded country and
// the gender filter. Only explicit interaction changes it.
type UIState struct {
	Expanded   string       `json:"expanded"`
	IsExpanded bool         `json:"is_expanded"`
	Filter     GenderFilter `json:"filter"`
}

func (s UIState) IsOpen(country string) bool {
	return s.IsExpanded && s.Expanded == country
}

// Session is the complete state of one mounted directory. Users is replaced
// wholesale by a successful load and never edited in place.
type Session struct {
	ID        string     `json:"id"`
	Users     []User     `json:"users"`
	UI        UIState    `json:"ui"`
	Status    LoadStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	LoadedAt  time.Time  `json:"loaded_at"`
	CreatedAt time.Time  `json:"created_at"`
}
