// Package source acquires user profiles and normalises them into domain
// records. Every Loader returns either the full set or an error, never a
// partial result.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/country-directory/internal/domain"
)

// BatchSize is the number of profiles requested per load.
const BatchSize = 100

type Loader interface {
	Load(ctx context.Context) ([]domain.User, error)
}

// FetchError wraps every load failure. It matches domain.ErrFetchFailed.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == domain.ErrFetchFailed
}

func IsFetchError(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}
