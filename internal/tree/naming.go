package tree

import (
	"strconv"
	"strings"

	"github.com/roach88/treeq/internal/ir"
)

// ParamNamer issues parameter names of the form <field>_<alias>_<id>.
//
// The same (field, alias, id) always gets the same name, so two flags that
// need one entity value share one binding. Names are restricted to
// [A-Za-z0-9_]; when that rewriting makes two different keys render alike,
// the later key gets a numeric suffix. A ParamNamer is not safe for
// concurrent use; create one per compilation.
type ParamNamer struct {
	byKey  map[string]string // key -> issued name
	byName map[string]string // issued name -> key
}

// NewParamNamer creates an empty namer.
func NewParamNamer() *ParamNamer {
	return &ParamNamer{
		byKey:  map[string]string{},
		byName: map[string]string{},
	}
}

// Name returns the parameter name for field of the entity identified by id
// under alias.
func (n *ParamNamer) Name(field, alias string, id ir.IRValue) string {
	key := paramKey(field, alias, id)
	if name, ok := n.byKey[key]; ok {
		return name
	}

	base := sanitize(field) + "_" + sanitize(alias) + "_" + sanitize(ir.Text(id))
	name := base
	for i := 2; ; i++ {
		if _, taken := n.byName[name]; !taken {
			break
		}
		name = base + "_" + strconv.Itoa(i)
	}

	n.byKey[key] = name
	n.byName[name] = key
	return name
}

// Len returns the number of distinct names issued.
func (n *ParamNamer) Len() int {
	return len(n.byKey)
}

// paramKey is the collision-free identity behind a name. Canonical JSON
// keeps IRInt(1) and IRString("1") apart.
func paramKey(field, alias string, id ir.IRValue) string {
	idJSON, err := ir.MarshalCanonical(id)
	if err != nil {
		idJSON = []byte(ir.Text(id))
	}
	return strconv.Quote(field) + "\x00" + strconv.Quote(alias) + "\x00" + string(idJSON)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
