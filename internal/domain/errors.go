package domain

import "errors"

var (
	// ErrDeckNotFound is returned when a deck cannot be found by ID.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrSetNotFound is returned when a set cannot be found by ID.
	ErrSetNotFound = errors.New("set not found")

	// ErrNotDualColor is returned when a deck's color identity does not
	// reduce to exactly one primary and one secondary color.
	ErrNotDualColor = errors.New("only dual color decks are supported for recommendations")

	// ErrUnknownSetCode is returned when a set code is not present in the
	// upstream set catalog.
	ErrUnknownSetCode = errors.New("unknown set code")

	// ErrUpstream is returned when the upstream card catalog fails or
	// returns a partial page sequence.
	ErrUpstream = errors.New("card catalog request failed")

	// ErrScorer is returned when the scorer subprocess fails to start,
	// times out, or produces empty/malformed output.
	ErrScorer = errors.New("scorer process failed")

	// ErrJobCancelled is returned when a job is superseded or explicitly
	// cancelled. It is a terminal state, not a failure.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrInvalidDeck is returned when a deck submission fails validation.
	ErrInvalidDeck = errors.New("invalid deck")

	// ErrInvalidSet is returned when a set registration fails validation.
	ErrInvalidSet = errors.New("invalid set")

	// ErrNoResult is returned when a principal has no stored recommendation.
	ErrNoResult = errors.New("no recommendation result available")

	// ErrRateLimitExceeded is returned when the API rate limit is hit.
	ErrRateLimitExceeded = errors.New("rate limit exceeded, try again later")
)
