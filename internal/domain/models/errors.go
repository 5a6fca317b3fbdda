package models

import "errors"

// Sentinel errors shared across the domain. The engines are pure functions;
// ErrNotFound only arises at the persistence boundary, ErrInvalidArgument
// only from malformed caller input.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
