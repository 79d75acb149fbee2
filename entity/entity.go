// Package entity implements model instances: a record of property values and
// a snapshot of the values last known to be persisted, used to compute which
// columns an UPDATE has to write.
package entity

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tordrt/litorm/schema"
)

// ErrUnknownColumn is returned when a value is assigned to an undeclared property.
var ErrUnknownColumn = errors.New("litorm: unknown column")

// Record maps property names to values. A missing key is an unset value,
// a key holding nil is SQL NULL.
type Record = map[string]any

// Entity is one row of a model.
type Entity struct {
	meta     *schema.Metadata
	values   Record
	original Record
}

// New creates an entity from data. Every key of data must be a declared
// property. The snapshot starts as a shallow copy of data.
func New(meta *schema.Metadata, data Record) (*Entity, error) {
	if meta == nil {
		return nil, schema.ErrMissingMetadata
	}
	e := &Entity{
		meta:     meta,
		values:   make(Record, len(data)),
		original: make(Record, len(data)),
	}
	for k, v := range data {
		if !meta.Has(k) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, meta.Name(), k)
		}
		e.values[k] = v
		e.original[k] = v
	}
	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(meta *schema.Metadata, data Record) *Entity {
	e, err := New(meta, data)
	if err != nil {
		panic(err)
	}
	return e
}

// FromRow creates an entity from a result row. Row keys may be physical
// column names or property names; columns the model does not declare are
// ignored.
func FromRow(meta *schema.Metadata, row map[string]any) (*Entity, error) {
	if meta == nil {
		return nil, schema.ErrMissingMetadata
	}
	e := &Entity{
		meta:     meta,
		values:   make(Record, len(row)),
		original: make(Record, len(row)),
	}
	e.assignRow(row)
	for k, v := range e.values {
		e.original[k] = v
	}
	return e, nil
}

// Metadata returns the model description of the entity.
func (e *Entity) Metadata() *schema.Metadata { return e.meta }

// Get returns the current value of property and whether it is set.
func (e *Entity) Get(property string) (any, bool) {
	v, ok := e.values[property]
	return v, ok
}

// Original returns the snapshot value of property and whether it is set.
func (e *Entity) Original(property string) (any, bool) {
	v, ok := e.original[property]
	return v, ok
}

// Set assigns a value to a declared property.
func (e *Entity) Set(property string, value any) error {
	if !e.meta.Has(property) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, e.meta.Name(), property)
	}
	e.values[property] = value
	return nil
}

// Values returns a shallow copy of the current values.
func (e *Entity) Values() Record {
	out := make(Record, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Merge copies the declared columns of a result row into the entity
// without touching the snapshot.
func (e *Entity) Merge(row map[string]any) {
	e.assignRow(row)
}

func (e *Entity) assignRow(row map[string]any) {
	for col, v := range row {
		if prop, ok := e.meta.PropertyFor(col); ok {
			e.values[prop] = v
		}
	}
}

// Changes returns the declared properties whose current value differs from
// the snapshot. The comparison is shallow: a slice or map mutated in place
// still compares equal to itself and is not reported.
func (e *Entity) Changes() Record {
	changes := make(Record)
	for _, prop := range e.meta.Properties() {
		cur, curOK := e.values[prop]
		orig, origOK := e.original[prop]
		if curOK != origOK || !sameValue(cur, orig) {
			changes[prop] = cur
		}
	}
	return changes
}

// HasChanges reports whether Changes is non-empty.
func (e *Entity) HasChanges() bool {
	return len(e.Changes()) > 0
}

// SyncOriginalValues makes the snapshot match the current values. It is
// called after every successful write.
func (e *Entity) SyncOriginalValues() {
	for _, prop := range e.meta.Properties() {
		if v, ok := e.values[prop]; ok {
			e.original[prop] = v
		} else {
			delete(e.original, prop)
		}
	}
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameReflect(reflect.ValueOf(a), reflect.ValueOf(b))
}

// sameReflect compares slices, maps and functions by identity and walks
// arrays and structs, so a value holding a slice still equals itself.
func sameReflect(va, vb reflect.Value) bool {
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return sameReflect(va.Elem(), vb.Elem())
	case reflect.Array:
		for i := 0; i < va.Len(); i++ {
			if !sameReflect(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !sameReflect(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	}
	return va.Equal(vb)
}
