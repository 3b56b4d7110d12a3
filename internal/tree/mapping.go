package tree

// Logical nested-set keys.
const (
	KeyID    = "id"
	KeyLevel = "level"
	KeyLeft  = "left"
	KeyRight = "right"
	KeyRoot  = "root"
)

// Keys lists the logical keys in a fixed order.
var Keys = []string{KeyID, KeyLevel, KeyLeft, KeyRight, KeyRoot}

// Mapping names the entity field (and column) behind each nested-set key.
// It is a value type; resolve once per call and pass it around by value.
type Mapping struct {
	ID    string
	Level string
	Left  string
	Right string
	Root  string
}

// DefaultMapping maps every key to its own name.
func DefaultMapping() Mapping {
	return Mapping{ID: KeyID, Level: KeyLevel, Left: KeyLeft, Right: KeyRight, Root: KeyRoot}
}

// ResolveMapping applies non-empty overrides on top of DefaultMapping.
// Unknown keys are ignored. No check is made that the fields exist.
func ResolveMapping(overrides map[string]string) Mapping {
	m := DefaultMapping()
	pick := func(key string, dst *string) {
		if v := overrides[key]; v != "" {
			*dst = v
		}
	}
	pick(KeyID, &m.ID)
	pick(KeyLevel, &m.Level)
	pick(KeyLeft, &m.Left)
	pick(KeyRight, &m.Right)
	pick(KeyRoot, &m.Root)
	return m
}

// Field returns the mapped name for a logical key, or "" for unknown keys.
func (m Mapping) Field(key string) string {
	switch key {
	case KeyID:
		return m.ID
	case KeyLevel:
		return m.Level
	case KeyLeft:
		return m.Left
	case KeyRight:
		return m.Right
	case KeyRoot:
		return m.Root
	default:
		return ""
	}
}

// Overrides returns the entries that differ from the defaults.
func (m Mapping) Overrides() map[string]string {
	out := map[string]string{}
	for _, key := range Keys {
		if f := m.Field(key); f != key {
			out[key] = f
		}
	}
	return out
}
