package schema

import "errors"

var (
	// ErrMissingMetadata is returned when a model has no registered metadata.
	ErrMissingMetadata = errors.New("litorm: model has no metadata")

	// ErrInvalidMetadata is returned when a model declaration is inconsistent.
	ErrInvalidMetadata = errors.New("litorm: invalid model metadata")
)
