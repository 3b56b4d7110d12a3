package tree

import (
	"fmt"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/qerr"
	"github.com/roach88/treeq/internal/queryir"
)

// BuildFor returns the predicate matching rows related to one reference
// entity under mode, together with the parameter bindings it references.
//
//	SELF:        alias.id = :id
//	ANCESTORS:   alias.level > :level AND alias.id > :left AND alias.id < :right
//	DESCENDANTS: alias.level < :level AND alias.root = :root AND alias.left < :id AND alias.right > :id
//
// Column names come from m; parameter names are issued by namer from the
// logical key, the alias and the entity id. When more than one flag is set
// the atomic predicates are OR-ed in the order above. A nil namer gets a
// fresh one.
func BuildFor(mode SearchMode, e Entity, alias string, m Mapping, namer *ParamNamer) (queryir.Predicate, map[string]ir.IRValue, error) {
	if e == nil {
		return nil, nil, qerr.InvalidArgument("nil entity")
	}
	if alias == "" {
		return nil, nil, qerr.InvalidArgument("empty alias")
	}
	if !hasKnownFlag(mode) {
		return nil, nil, qerr.InvalidArgument("search mode %d selects no relationship", uint8(mode))
	}
	if namer == nil {
		namer = NewParamNamer()
	}

	id, err := e.Value(m.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", KeyID, err)
	}

	b := &atomBuilder{
		entity: e,
		alias:  alias,
		id:     id,
		namer:  namer,
		params: map[string]ir.IRValue{},
	}

	var atoms []queryir.Predicate
	for _, flag := range knownFlags {
		if !mode.Has(flag) {
			continue
		}
		var atom queryir.Predicate
		switch flag {
		case SearchSelf:
			atom, err = b.self(m)
		case SearchAncestors:
			atom, err = b.ancestors(m)
		case SearchDescendants:
			atom, err = b.descendants(m)
		}
		if err != nil {
			return nil, nil, err
		}
		atoms = append(atoms, atom)
	}

	if len(atoms) == 1 {
		return atoms[0], b.params, nil
	}
	return queryir.Or{Predicates: atoms}, b.params, nil
}

func hasKnownFlag(mode SearchMode) bool {
	for _, f := range knownFlags {
		if mode.Has(f) {
			return true
		}
	}
	return false
}

type atomBuilder struct {
	entity Entity
	alias  string
	id     ir.IRValue
	namer  *ParamNamer
	params map[string]ir.IRValue
}

// param binds the entity's value for a logical key and returns its name.
func (b *atomBuilder) param(key, field string) (string, error) {
	v, err := b.entity.Value(field)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	name := b.namer.Name(key, b.alias, b.id)
	b.params[name] = v
	return name, nil
}

func (b *atomBuilder) self(m Mapping) (queryir.Predicate, error) {
	id, err := b.param(KeyID, m.ID)
	if err != nil {
		return nil, err
	}
	return queryir.Eq(b.alias, m.ID, id), nil
}

// ancestors compares the candidate's id column against the reference's
// left and right values. This reads "left" and "right" off ids, which is
// only meaningful for trees whose ids follow the left values.
func (b *atomBuilder) ancestors(m Mapping) (queryir.Predicate, error) {
	level, err := b.param(KeyLevel, m.Level)
	if err != nil {
		return nil, err
	}
	left, err := b.param(KeyLeft, m.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.param(KeyRight, m.Right)
	if err != nil {
		return nil, err
	}
	return queryir.AllOf(
		queryir.Gt(b.alias, m.Level, level),
		queryir.Gt(b.alias, m.ID, left),
		queryir.Lt(b.alias, m.ID, right),
	), nil
}

func (b *atomBuilder) descendants(m Mapping) (queryir.Predicate, error) {
	level, err := b.param(KeyLevel, m.Level)
	if err != nil {
		return nil, err
	}
	root, err := b.param(KeyRoot, m.Root)
	if err != nil {
		return nil, err
	}
	id, err := b.param(KeyID, m.ID)
	if err != nil {
		return nil, err
	}
	return queryir.AllOf(
		queryir.Lt(b.alias, m.Level, level),
		queryir.Eq(b.alias, m.Root, root),
		queryir.Lt(b.alias, m.Left, id),
		queryir.Gt(b.alias, m.Right, id),
	), nil
}
