package view

import (
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/actuallystonmai/country-directory/internal/grouping"
)

const DateLayout = "2006-01-02"

type Member struct {
	ID           string    `json:"id"`
	Thumbnail    string    `json:"thumbnail"`
	FirstName    string    `json:"first_name"`
	FullName     string    `json:"full_name"`
	Gender       string    `json:"gender"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Registered   string    `json:"registered"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Country struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Expanded bool   `json:"expanded"`
	// Empty is set on the expanded country when the filter leaves no
	// members; surfaces show "No data" instead of a list.
	Empty   bool     `json:"empty,omitempty"`
	Members []Member `json:"members,omitempty"`
}

type Page struct {
	Status    domain.LoadStatus   `json:"status"`
	Error     string              `json:"error,omitempty"`
	Filter    domain.GenderFilter `json:"filter"`
	Users     int                 `json:"users"`
	Countries []Country           `json:"countries"`
}

// Project renders users under s. Grouping, sorting and filtering are derived
// from scratch on every call.
func Project(users []domain.User, s State) Page {
	groups := grouping.ByCountry(users)

	page := Page{
		Filter:    s.Filter,
		Users:     len(users),
		Countries: make([]Country, 0, len(groups)),
	}

	for _, g := range groups {
		c := Country{Name: g.Country, Total: g.Total()}
		if s.IsOpen(g.Country) {
			c.Expanded = true
			c.Members = members(grouping.FilterAndSort(g.Members, s.Filter))
			c.Empty = len(c.Members) == 0
		}
		page.Countries = append(page.Countries, c)
	}

	return page
}

// ExpandedCountry returns the expanded entry of the page, if any.
func (p Page) ExpandedCountry() (Country, bool) {
	for _, c := range p.Countries {
		if c.Expanded {
			return c, true
		}
	}
	return Country{}, false
}

func members(users []domain.User) []Member {
	out := make([]Member, 0, len(users))
	for _, u := range users {
		out = append(out, Member{
			ID:           u.ID,
			Thumbnail:    u.Thumbnail,
			FirstName:    u.Name.First,
			FullName:     u.Name.Full(),
			Gender:       string(u.Gender),
			City:         u.Location.City,
			State:        u.Location.State,
			Registered:   u.RegisteredAt.UTC().Format(DateLayout),
			RegisteredAt: u.RegisteredAt,
		})
	}
	return out
}
