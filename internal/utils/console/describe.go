package console

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/aanand-mishra/student-directory/internal/directory"
	"github.com/aanand-mishra/student-directory/internal/session"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/validation"
)

// Describe converts an error returned by the directory service into one
// human-readable sentence.
//
// Known error kinds are matched with errors.Is; the oops context supplies
// details such as the offending student ID. Anything else is reported as
// an unexpected error with its message.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, validation.ErrMissingField):
		return "Error: All fields are required."
	case errors.Is(err, validation.ErrWeakPassword):
		return fmt.Sprintf("Error: Password must be at least %d characters long.", validation.MinPasswordLength)
	case errors.Is(err, validation.ErrInvalidEmail):
		return "Error: Invalid email format."
	case errors.Is(err, validation.ErrDuplicateID):
		if id, ok := contextValue(err, "id"); ok {
			return fmt.Sprintf("Error: Student ID '%s' is already registered.", id)
		}
		return "Error: Student ID is already registered."
	case errors.Is(err, directory.ErrNotFound):
		return "Error: Student ID not found."
	case errors.Is(err, directory.ErrBadCredentials):
		return "Error: Incorrect password."
	case errors.Is(err, session.ErrAlreadyAuthenticated):
		return "Error: Another student is logged in. Log out first."
	case errors.Is(err, storage.ErrCorruptData):
		return fmt.Sprintf("Warning: Could not read data file (%s). Starting fresh.", rootCause(err))
	case errors.Is(err, storage.ErrPersistence):
		return fmt.Sprintf("Error saving data: %s", rootCause(err))
	default:
		return fmt.Sprintf("An unexpected error occurred: %s", err)
	}
}

// Expected reports whether err is one of the kinds a user can cause by
// typing something wrong. Those are shown but not worth an error log line.
func Expected(err error) bool {
	for _, kind := range []error{
		validation.ErrMissingField,
		validation.ErrWeakPassword,
		validation.ErrInvalidEmail,
		validation.ErrDuplicateID,
		directory.ErrNotFound,
		directory.ErrBadCredentials,
		session.ErrAlreadyAuthenticated,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}

func contextValue(err error, key string) (any, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil, false
	}
	v, ok := oopsErr.Context()[key]
	return v, ok
}

// rootCause returns the message of the innermost wrapped error that is not
// one of the storage kinds, e.g. the *fs.PathError behind a failed save.
func rootCause(err error) string {
	var last error
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if e != storage.ErrCorruptData && e != storage.ErrPersistence { //nolint:errorlint // identity check on the kinds themselves
			last = e
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	if last == nil {
		return err.Error()
	}
	return last.Error()
}
