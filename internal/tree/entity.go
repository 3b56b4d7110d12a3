package tree

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
)

// Entity is a reference row whose nested-set fields are read through a
// Mapping. The compiler never constructs or mutates entities.
type Entity interface {
	// Value returns the value of the named field, or an error if the
	// entity has no such field or its value cannot be bound.
	Value(field string) (ir.IRValue, error)
}

// Record is an Entity backed by a plain map.
type Record map[string]any

// Value implements Entity.
func (r Record) Value(field string) (ir.IRValue, error) {
	raw, ok := r[field]
	if !ok {
		return nil, qerr.InvalidArgument("entity has no field %q", field)
	}
	v, err := ir.FromAny(raw)
	if err != nil {
		return nil, qerr.InvalidArgument("field %q: %v", field, err)
	}
	return v, nil
}

// EntityOf adapts v to an Entity.
//
// Entities and maps are used as-is; structs (or pointers to structs) are
// decoded into a Record keyed by their `db` tags, falling back to the Go
// field name for untagged fields.
func EntityOf(v any) (Entity, error) {
	switch val := v.(type) {
	case nil:
		return nil, qerr.InvalidArgument("nil entity")
	case Entity:
		return val, nil
	case map[string]any:
		return Record(val), nil
	}

	out := Record{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "db",
		Result:  &out,
	})
	if err != nil {
		return nil, fmt.Errorf("create entity decoder: %w", err)
	}
	if err := dec.Decode(v); err != nil {
		return nil, qerr.InvalidArgument("cannot read %T as entity: %v", v, err)
	}
	return out, nil
}

// EntitiesOf adapts every element of vs with EntityOf.
func EntitiesOf[T any](vs []T) ([]Entity, error) {
	out := make([]Entity, 0, len(vs))
	for i, v := range vs {
		e, err := EntityOf(v)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
