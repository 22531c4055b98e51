package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidFilter   = errors.New("invalid gender filter")
	ErrLoadInProgress  = errors.New("load already in progress")
	ErrFetchFailed     = errors.New("fetch failed")
)
