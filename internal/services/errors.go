package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	// Generic
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	// Profile
	ErrProfileNotFound   = errors.New("profile not found")
	ErrDuplicateRequest  = errors.New("mentorship request already open for this mentor")
	ErrRequestNotFound   = errors.New("mentorship request not found")
	ErrRequestNotPending = errors.New("mentorship request is no longer pending")
	ErrCourseNotFound    = errors.New("course not found on profile")

	// Feed
	ErrPostNotFound    = errors.New("post not found")
	ErrAlreadyVoted    = errors.New("user has already voted on this post")
	ErrInvalidVote     = errors.New("invalid vote type")
	ErrFeedUnavailable = errors.New("feed backend unavailable")

	// Events
	ErrEventNotFound = errors.New("event not found")

	// AI boundary
	ErrAnalysisFailed = errors.New("venture analysis failed")
)

// ===== ERROR CLASSIFICATION =====

// IsNotFoundError reports whether err maps to a 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrPostNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrCourseNotFound)
}

// IsConflictError reports whether err maps to a 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyVoted) ||
		errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrRequestNotPending)
}

// IsValidationError reports whether err maps to a 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidVote)
}

// IsPermissionError reports whether err maps to a 401/403.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// wrapValidation attaches field details to the validation sentinel.
func wrapValidation(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, detail)
}
