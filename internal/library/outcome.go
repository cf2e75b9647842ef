package library

import (
	"errors"

	"github.com/desertthunder/lyrx/internal/shared"
)

// Kind classifies a failed call for presentation.
type Kind string

const (
	KindOK            Kind = "ok"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindForbidden     Kind = "forbidden"
	KindPersistence   Kind = "persistence"
	KindInternal      Kind = "internal"
)

// Result is the outcome a front end shows the user.
type Result struct {
	OK      bool   `json:"ok"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
}

// KindOf maps err onto a [Kind]. Argument errors from front ends count as validation.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return KindValidation
	case errors.Is(err, shared.ErrNotFound):
		return KindNotFound
	case errors.Is(err, shared.ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, shared.ErrForbidden):
		return KindForbidden
	case errors.Is(err, shared.ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}

// Outcome converts a facade error into a [Result].
func Outcome(err error) Result {
	if err == nil {
		return Result{OK: true, Kind: KindOK}
	}
	return Result{OK: false, Kind: KindOf(err), Message: err.Error()}
}
