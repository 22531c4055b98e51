package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"go.uber.org/zap"
)

const DefaultURL = "https://randomuser.me/api/"

// Client loads profiles from a randomuser.me compatible endpoint. It issues
// exactly one request per Load and caches nothing.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

func NewClient(httpClient *http.Client, baseURL string, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: httpClient, baseURL: baseURL, log: log}
}

type response struct {
	Results []profile `json:"results"`
}

type profile struct {
	Gender string `json:"gender"`
	Name   struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Location struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"location"`
	Picture struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"picture"`
	Login struct {
		UUID string `json:"uuid"`
	} `json:"login"`
	Registered struct {
		Date string `json:"date"`
	} `json:"registered"`
}

func (c *Client) Load(ctx context.Context) ([]domain.User, error) {
	const op = "source.randomuser.Load"

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("parse url: %w", err)}
	}
	q := u.Query()
	q.Set("results", strconv.Itoa(BatchSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("do: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	if body.Results == nil {
		return nil, &FetchError{Op: op, Err: errors.New("decode: missing results")}
	}

	users, err := normalise(body.Results)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}

	c.log.Debug("profiles_loaded",
		zap.Int("count", len(users)),
		zap.Duration("took", time.Since(start)),
	)
	return users, nil
}

// normalise converts raw profiles. Missing optional fields become empty
// strings; a missing id, a bad registration date or a duplicate id rejects
// the whole batch.
func normalise(raw []profile) ([]domain.User, error) {
	users := make([]domain.User, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, p := range raw {
		id := strings.TrimSpace(p.Login.UUID)
		if id == "" {
			return nil, fmt.Errorf("result %d: missing login.uuid", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("result %d: duplicate login.uuid %q", i, id)
		}
		seen[id] = struct{}{}

		registered, err := parseRegistered(p.Registered.Date)
		if err != nil {
			return nil, fmt.Errorf("result %d: registered.date: %w", i, err)
		}

		users = append(users, domain.User{
			ID:     id,
			Gender: domain.Gender(p.Gender),
			Name:   domain.Name{First: p.Name.First, Last: p.Name.Last},
			Location: domain.Location{
				City:    p.Location.City,
				State:   p.Location.State,
				Country: p.Location.Country,
			},
			Thumbnail:    p.Picture.Thumbnail,
			RegisteredAt: registered,
		})
	}

	return users, nil
}

func parseRegistered(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	layouts := []string{
		time.RFC3339Nano,          // 2007-07-09T05:51:59.390Z
		"2006-01-02T15:04:05.000", // no zone
		"2006-01-02",
	}

	var lastErr error
	for _, l := range layouts {
		t, err := time.Parse(l, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
