package litorm

import (
	"errors"

	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/entity"
	"github.com/tordrt/litorm/query"
	"github.com/tordrt/litorm/schema"
)

var (
	// ErrMissingPrimaryKey is returned when a model declares no primary key
	// or an entity carries no value for it.
	ErrMissingPrimaryKey = errors.New("litorm: entity has no primary key value")

	// ErrModelMismatch is returned when an entity is passed to the
	// repository of another model.
	ErrModelMismatch = errors.New("litorm: entity belongs to another model")

	// ErrInspectUnsupported is returned by CheckTables when the adapter
	// cannot read the live schema.
	ErrInspectUnsupported = errors.New("litorm: adapter cannot inspect the schema")
)

// Errors of the subpackages, re-exported for errors.Is checks.
var (
	ErrNotConnected         = adapter.ErrNotConnected
	ErrConnectionFailed     = adapter.ErrConnectionFailed
	ErrUnsupportedAdapter   = adapter.ErrUnsupportedAdapter
	ErrMissingMetadata      = schema.ErrMissingMetadata
	ErrInvalidMetadata      = schema.ErrInvalidMetadata
	ErrUnknownColumn        = entity.ErrUnknownColumn
	ErrEmptyData            = query.ErrEmptyData
	ErrUnsafeDelete         = query.ErrUnsafeDelete
	ErrUnsupportedStatement = query.ErrUnsupportedStatement
	ErrInvalidClause        = query.ErrInvalidClause
)

// QueryError is the error returned for a statement the database rejected.
type QueryError = adapter.QueryError
