package domain

import "time"

type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

func (n Name) Full() string {
	switch {
	case n.First == "":
		return n.Last
	case n.Last == "":
		return n.First
	}
	return n.First + " " + n.Last
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// User is one normalised profile. RegisteredAt is derived once at load time
// and is the only field used for ordering.
type User struct {
	ID           string    `json:"id"`
	Gender       Gender    `json:"gender"`
	Name         Name      `json:"name"`
	Location     Location  `json:"location"`
	Thumbnail    string    `json:"thumbnail"`
	RegisteredAt time.Time `json:"registered_at"`
}
