package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/google/uuid"
)

// Seed generates profiles locally from a deterministic random source. It is
// used for offline runs and demos in place of the remote endpoint.
type Seed struct {
	mu  sync.Mutex
	rng *rand.Rand
	n   int
	now func() time.Time
}

func NewSeed(seed int64) *Seed {
	return &Seed{
		rng: rand.New(rand.NewSource(seed)),
		n:   BatchSize,
		now: time.Now,
	}
}

type place struct {
	country string
	states  []string
	cities  []string
}

var (
	places = []place{
		{"United States", []string{"Texas", "Oregon", "Maine"}, []string{"Austin", "Salem", "Portland"}},
		{"France", []string{"Île-de-France", "Bretagne"}, []string{"Paris", "Rennes", "Brest"}},
		{"Germany", []string{"Bayern", "Hessen"}, []string{"München", "Kassel", "Fulda"}},
		{"Brazil", []string{"Bahia", "Paraná"}, []string{"Salvador", "Curitiba"}},
		{"Norway", []string{"Vestland", "Troms"}, []string{"Bergen", "Tromsø"}},
		{"Australia", []string{"Victoria", "Tasmania"}, []string{"Geelong", "Hobart"}},
		{"Canada", []string{"Ontario", "Yukon"}, []string{"Ottawa", "Whitehorse"}},
		{"Iran", []string{"Fars", "Gilan"}, []string{"Shiraz", "Rasht"}},
	}
	placeWeights = []float64{0.22, 0.16, 0.14, 0.12, 0.10, 0.10, 0.10, 0.06}

	firstNames = map[domain.Gender][]string{
		domain.GenderMale:   {"Liam", "Noah", "Mathis", "Jonas", "Arthur", "Pedro", "Kian"},
		domain.GenderFemale: {"Emma", "Chloé", "Mia", "Ingrid", "Ana", "Zoe", "Sara"},
	}
	lastNames = []string{"Martin", "Schulz", "Silva", "Hansen", "Brown", "Moradi", "Taylor", "Roux"}
)

// Load generates one batch. Every call advances the random source, so a
// reload yields a fresh set.
func (s *Seed) Load(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Op: "source.seed.Load", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	users := make([]domain.User, 0, s.n)
	for i := 0; i < s.n; i++ {
		gender := domain.GenderMale
		if s.rng.Intn(2) == 1 {
			gender = domain.GenderFemale
		}
		p := places[weightedChoice(s.rng, placeWeights)]
		first := firstNames[gender][s.rng.Intn(len(firstNames[gender]))]

		id, err := uuid.NewRandomFromReader(s.rng)
		if err != nil {
			return nil, &FetchError{Op: "source.seed.Load", Err: err}
		}

		users = append(users, domain.User{
			ID:     id.String(),
			Gender: gender,
			Name:   domain.Name{First: first, Last: lastNames[s.rng.Intn(len(lastNames))]},
			Location: domain.Location{
				City:    p.cities[s.rng.Intn(len(p.cities))],
				State:   p.states[s.rng.Intn(len(p.states))],
				Country: p.country,
			},
			Thumbnail:    fmt.Sprintf("https://randomuser.me/api/portraits/thumb/%s/%d.jpg", portraitDir(gender), i%100),
			RegisteredAt: now.AddDate(0, 0, -s.rng.Intn(20*365)).UTC().Truncate(time.Second),
		})
	}

	return users, nil
}

func portraitDir(g domain.Gender) string {
	if g == domain.GenderFemale {
		return "women"
	}
	return "men"
}

func weightedChoice(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}
