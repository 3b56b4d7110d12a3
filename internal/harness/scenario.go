package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/treeq/internal/qerr"
	"github.com/roach88/treeq/internal/store"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Alias is the table alias used in compiled SQL. Default "n".
	Alias string `yaml:"alias,omitempty"`

	// Mapping overrides logical tree keys with column names.
	Mapping map[string]string `yaml:"mapping,omitempty"`

	// Nodes seed the nodes table before any case runs.
	Nodes []store.Node `yaml:"nodes,omitempty"`

	// Cases run in order against the same seeded store.
	Cases []Case `yaml:"cases"`
}

// Case is a single search or expression check.
type Case struct {
	Name string `yaml:"name"`

	// Entities are ids of seeded nodes used as reference entities.
	// A case without Expr is a search case.
	Entities []int64 `yaml:"entities,omitempty"`
	Mode     string  `yaml:"mode,omitempty"`
	Combine  string  `yaml:"combine,omitempty"`
	OrderBy  string  `yaml:"order_by,omitempty"`

	// Expr is a dql expression compiled for Dialect.
	Expr    string `yaml:"expr,omitempty"`
	Dialect string `yaml:"dialect,omitempty"`

	// ExpectIDs is compared in order. Use [] to expect no rows.
	ExpectIDs []int64 `yaml:"expect_ids,omitempty"`

	// ExpectSQL is the condition SQL for search cases and the rendered
	// expression for expression cases.
	ExpectSQL string `yaml:"expect_sql,omitempty"`

	// ExpectError is an error code such as INVALID_ARGUMENT.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Case kinds.
const (
	KindSearch = "search"
	KindExpr   = "expr"
)

// Kind reports whether c is a search or an expression case.
func (c Case) Kind() string {
	if c.Expr != "" {
		return KindExpr
	}
	return KindSearch
}

var errorCodes = map[string]bool{
	string(qerr.CodeInvalidArgument): true,
	string(qerr.CodeNotImplemented):  true,
	string(qerr.CodeParseError):      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "expect_id:" vs "expect_ids:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seenNodes := make(map[int64]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if seenNodes[n.ID] {
			return fmt.Errorf("nodes[%d]: duplicate id %d", i, n.ID)
		}
		seenNodes[n.ID] = true
		if n.Left >= n.Right {
			return fmt.Errorf("nodes[%d]: lft %d must be less than rgt %d", i, n.Left, n.Right)
		}
	}

	seenCases := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seenCases[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seenCases[c.Name] = true

		if c.ExpectIDs == nil && c.ExpectSQL == "" && c.ExpectError == "" {
			return fmt.Errorf("cases[%d]: one of expect_ids, expect_sql or expect_error is required", i)
		}
		if c.ExpectError != "" && !errorCodes[c.ExpectError] {
			return fmt.Errorf("cases[%d]: unknown error code %q", i, c.ExpectError)
		}
		if c.ExpectError != "" && c.ExpectIDs != nil {
			return fmt.Errorf("cases[%d]: expect_ids and expect_error are mutually exclusive", i)
		}

		switch c.Kind() {
		case KindExpr:
			if c.Dialect == "" {
				return fmt.Errorf("cases[%d]: dialect is required for expr cases", i)
			}
			if c.ExpectIDs != nil || len(c.Entities) > 0 || c.OrderBy != "" {
				return fmt.Errorf("cases[%d]: expr cases take only dialect and expect_sql or expect_error", i)
			}
		case KindSearch:
			if c.Dialect != "" {
				return fmt.Errorf("cases[%d]: search cases always run on sqlite", i)
			}
			for _, id := range c.Entities {
				if !seenNodes[id] {
					return fmt.Errorf("cases[%d]: entity %d is not a seeded node", i, id)
				}
			}
		}
	}

	return nil
}
