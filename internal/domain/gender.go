package domain

import (
	"fmt"
	"strings"
)

// Gender is passed through as the source supplies it. Values other than
// male and female are kept and only ever match the "all" filter.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type GenderFilter string

const (
	FilterAll    GenderFilter = "all"
	FilterMale   GenderFilter = "male"
	FilterFemale GenderFilter = "female"
)

// GenderFilters lists the filter options in display order.
var GenderFilters = []GenderFilter{FilterAll, FilterMale, FilterFemale}

func ParseGenderFilter(s string) (GenderFilter, error) {
	switch f := GenderFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterMale, FilterFemale:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Matches reports whether a record with gender g passes the filter.
func (f GenderFilter) Matches(g Gender) bool {
	if f == FilterAll {
		return true
	}
	return string(g) == string(f)
}

// Next cycles all -> male -> female -> all.
func (f GenderFilter) Next() GenderFilter {
	for i, o := range GenderFilters {
		if o == f {
			return GenderFilters[(i+1)%len(GenderFilters)]
		}
	}
	return FilterAll
}

func (f GenderFilter) Label() string {
	switch f {
	case FilterMale:
		return "Male"
	case FilterFemale:
		return "Female"
	}
	return "All"
}
