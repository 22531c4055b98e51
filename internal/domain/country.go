package domain

type CountryGroup struct {
	Country string `json:"country"`
	Members []User `json:"members"`
}

func (g CountryGroup) Total() int {
	return len(g.Members)
}
