package graph

import "errors"

var (
	// ErrSelfFollow is returned when a DID tries to follow itself
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrInvalidSubject is returned when the follow target is empty
	ErrInvalidSubject = errors.New("follow subject is required")
)
