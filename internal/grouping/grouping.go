// Package grouping derives the country ranking and the per-country member
// listing from a loaded user set. Everything here is a pure function of its
// input and is recomputed on every call.
package grouping

import (
	"sort"

	"github.com/actuallystonmai/country-directory/internal/domain"
)

// ByCountry partitions users by exact Location.Country and ranks the groups
// by member count descending, ties broken by country name ascending.
// Members keep the relative order they had in users.
func ByCountry(users []domain.User) []domain.CountryGroup {
	index := make(map[string]int)
	groups := make([]domain.CountryGroup, 0)

	for _, u := range users {
		i, ok := index[u.Location.Country]
		if !ok {
			i = len(groups)
			index[u.Location.Country] = i
			groups = append(groups, domain.CountryGroup{Country: u.Location.Country})
		}
		groups[i].Members = append(groups[i].Members, u)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		return groups[i].Country < groups[j].Country
	})

	return groups
}

// FilterAndSort orders members by registration time, newest first, and keeps
// only those matching filter. The input slice is never reordered.
func FilterAndSort(members []domain.User, filter domain.GenderFilter) []domain.User {
	sorted := make([]domain.User, len(members))
	copy(sorted, members)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RegisteredAt.After(sorted[j].RegisteredAt)
	})

	out := make([]domain.User, 0, len(sorted))
	for _, u := range sorted {
		if filter.Matches(u.Gender) {
			out = append(out, u)
		}
	}
	return out
}
