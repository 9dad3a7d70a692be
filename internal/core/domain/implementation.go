package domain

import (
	"context"
	"maps"
	"slices"
)

// Value is an arbitrary nested payload: map[string]any, []any, or a scalar
// (string, bool, integer, float, nil).
type Value = any

// OperationFunc is a bound operation handle of an implementation instance.
type OperationFunc func(ctx context.Context, args ...Value) (Value, error)

// Implementation is a living instance whose operations are addressable by name.
type Implementation interface {
	// Name identifies the instance in logs and spans.
	Name() string
	// Operation returns the handle registered under op.
	Operation(op string) (OperationFunc, bool)
}

// Constructor builds a fresh Implementation. It is invoked lazily on first use.
type Constructor func(ctx context.Context) (Implementation, error)

// OperationTable is an Implementation backed by a fixed name -> handle map
// populated at construction.
type OperationTable struct {
	name string
	ops  map[string]OperationFunc
}

// NewOperationTable creates an OperationTable. The map is copied.
func NewOperationTable(name string, ops map[string]OperationFunc) *OperationTable {
	return &OperationTable{
		name: name,
		ops:  maps.Clone(ops),
	}
}

// Name returns the table name.
func (t *OperationTable) Name() string {
	return t.name
}

// Operation looks up an operation handle by name.
func (t *OperationTable) Operation(op string) (OperationFunc, bool) {
	fn, ok := t.ops[op]
	return fn, ok
}

// Operations returns the sorted operation names.
func (t *OperationTable) Operations() []string {
	return slices.Sorted(maps.Keys(t.ops))
}

// Registration maps a type name to its constructor pair.
type Registration struct {
	TypeName  string
	Original  Constructor
	Candidate Constructor
}

// Constructor returns the constructor for the given identity.
func (r Registration) Constructor(id Identity) Constructor {
	if id == Original {
		return r.Original
	}
	return r.Candidate
}
