package query

import "errors"

var (
	// ErrEmptyData is returned when an INSERT or UPDATE has no column to write.
	ErrEmptyData = errors.New("litorm: no data provided for write")

	// ErrUnsafeDelete is returned when a DELETE has no WHERE condition.
	// Deleting a whole table through the builder is not allowed.
	ErrUnsafeDelete = errors.New("litorm: refusing DELETE without WHERE condition")

	// ErrUnsupportedStatement is returned when the builder mode is unknown.
	ErrUnsupportedStatement = errors.New("litorm: unsupported statement type")

	// ErrInvalidClause is returned for an unknown operator, order direction or join kind.
	ErrInvalidClause = errors.New("litorm: invalid clause")
)
