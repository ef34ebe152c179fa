package service

import (
	"errors"
	"fmt"

	"medexa/internal/repository"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another account.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned, wrapped with the offending field, for rejected input.
	ErrValidation = errors.New("validation failed")
)

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
