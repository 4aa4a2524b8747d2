package configarray

import "errors"

// Sentinel error kinds. Use errors.Is to check for a specific kind; wrapped
// errors (via %w) still satisfy these checks.
var (
	// ErrNotNormalized is returned by any query method invoked before the
	// array has been normalized.
	ErrNotNormalized = errors.New("configarray: array has not been normalized")

	// ErrNotExtensible is returned by Push after the array has been
	// normalized; the array is frozen and no longer accepts new entries.
	ErrNotExtensible = errors.New("configarray: array is frozen and cannot be extended")

	// ErrUnexpectedArray is returned during normalization when a nested
	// array is encountered but ExtraConfigTypes.Array was not enabled.
	ErrUnexpectedArray = errors.New("configarray: nested arrays are not enabled (set ExtraConfigTypes.Array)")

	// ErrUnexpectedFunction is returned during normalization when a factory
	// callable is encountered but ExtraConfigTypes.Function was not enabled.
	ErrUnexpectedFunction = errors.New("configarray: factory functions are not enabled (set ExtraConfigTypes.Function)")

	// ErrInvalidReturn is returned when a factory callable returns another
	// factory callable instead of a config entry, array, or deferred value.
	ErrInvalidReturn = errors.New("configarray: a factory function returned another factory function")

	// ErrAsyncNotSupported is returned by NormalizeSync when a factory
	// callable returns a Deferred value; synchronous normalization cannot
	// suspend to await it.
	ErrAsyncNotSupported = errors.New("configarray: a factory function returned a deferred value during synchronous normalization")

	// ErrInvalidFiles is returned lazily, at query time, when GetConfig
	// reaches an entry whose "files" key is present but is not a non-empty
	// array of valid patterns.
	ErrInvalidFiles = errors.New(`configarray: "files" must be a non-empty array`)
)
