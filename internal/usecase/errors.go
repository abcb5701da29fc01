package usecase

import "errors"

// Sentinels returned by LeagueSession; callers wrap them with detail and match via errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTeamInUse rejects deleting a team that a stored match still points at.
	ErrTeamInUse = errors.New("team is referenced by matches")
	// ErrDependencyUnavailable covers an uninitialized session and an open remote circuit breaker.
	ErrDependencyUnavailable = errors.New("remote league store unavailable")
	ErrSessionClosed         = errors.New("league session closed")
)
