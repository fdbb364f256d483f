package back

import (
	"errors"
	"fmt"
	"touchline/internal/util"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrClubNotFound    = errors.New("club not found")
	ErrAlreadyOwned    = errors.New("club already has a manager")
	ErrAlreadyManaging = errors.New("user already manages a club")
	ErrNotManaging     = errors.New("user does not manage any club")
	ErrSameClub        = errors.New("a club cannot play against itself")

	// ErrStoreUnavailable is transient: the database was busy or the
	// operation timed out, the caller can try again later.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSimulationFailure wraps any error preventing a single match from
	// being played.
	ErrSimulationFailure = errors.New("match simulation failed")
)

// MatchError is a failure to play a single match, the match was left
// untouched and will be retried on the next sweep.
type MatchError struct {
	MatchID int64
	Err     error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("match %d: %s", e.MatchID, e.Err)
}

// Unwrap matches ErrSimulationFailure and the cause, the latter wraps
// ErrStoreUnavailable when the failure is transient.
func (e *MatchError) Unwrap() []error {
	return []error{ErrSimulationFailure, e.Err}
}

// storeError flags transient errors as ErrStoreUnavailable.
func storeError(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) || !util.IsTransient(err) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
