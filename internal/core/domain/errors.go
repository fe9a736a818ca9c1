package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTemporary    = errors.New("temporary failure")

	// Extraction failures are distinct kinds. Callers may branch on them,
	// user-facing messages do not.
	ErrNoJSONFound = errors.New("no json found in model response")
	ErrParseFailed = errors.New("model response json parse failed")

	// ErrBadModelOutput marks a parsed model result that fails shape
	// validation. It is a server-side condition, not caller input.
	ErrBadModelOutput = errors.New("model output failed validation")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
