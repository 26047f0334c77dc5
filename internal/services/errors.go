package services

import (
	"employee/internal/repositories"

	"github.com/pkg/errors"
)

// Error classes returned by every service. Callers classify with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// wrapRepoErr maps a repository miss to ErrNotFound and a unique violation
// to ErrConflict, and annotates anything else with the operation that failed.
func wrapRepoErr(err error, format string, args ...interface{}) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return errors.Wrapf(ErrNotFound, format, args...)
	case errors.Is(err, repositories.ErrConflict):
		return errors.Wrapf(ErrConflict, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}
