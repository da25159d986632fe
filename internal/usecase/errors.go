package usecase

import (
	"errors"

	"github.com/riskibarqy/pool-league/internal/domain/revision"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrConflict is returned when a concurrent writer won the race. It is
	// the repositories' revision.ErrConflict so either can be matched.
	ErrConflict = revision.ErrConflict
)
