package artifact

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that a required base directory of the store is missing,
// is not a directory, or cannot be read. It is fatal for the page that needs it.
type NotFoundError struct {
	Path string
	Err  error // Underlying cause, nil when the path simply does not exist
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact directory '%s' is not readable: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("artifact directory '%s' not found", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// InvalidSelectionError indicates a selection that is not allowed in the current state:
// an unknown page or dimension, a value outside the dimension's current options, or a
// resolve request for a selection that is not fully specified.
type InvalidSelectionError struct {
	Page      PageName
	Dimension string
	Value     string
	Reason    string
}

func (e *InvalidSelectionError) Error() string {
	switch {
	case e.Dimension == "":
		return fmt.Sprintf("invalid selection for page '%s': %s", e.Page, e.Reason)
	case e.Value == "":
		return fmt.Sprintf("invalid selection for %s/%s: %s", e.Page, e.Dimension, e.Reason)
	default:
		return fmt.Sprintf("invalid selection %s/%s='%s': %s", e.Page, e.Dimension, e.Value, e.Reason)
	}
}

// LoadError reports a failure to read one artifact after it was found to exist.
// It never aborts resolution of sibling artifacts.
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s artifact '%s': %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidSelection reports whether err is or wraps an *InvalidSelectionError.
func IsInvalidSelection(err error) bool {
	var target *InvalidSelectionError
	return errors.As(err, &target)
}

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}
