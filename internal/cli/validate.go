package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treeq/internal/config"
	"github.com/roach88/treeq/internal/tree"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Dialect  string            `json:"dialect,omitempty"`
	Database string            `json:"database,omitempty"`
	Table    string            `json:"table,omitempty"`
	Alias    string            `json:"alias,omitempty"`
	Mode     string            `json:"mode,omitempty"`
	Combine  string            `json:"combine,omitempty"`
	Mapping  map[string]string `json:"mapping,omitempty"`
	Error    *ValidationError  `json:"error,omitempty"`
}

// ValidationError locates a configuration error.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (r ValidationResult) String() string {
	if !r.Valid {
		return "✗ Validation failed"
	}
	var b strings.Builder
	b.WriteString("✓ Configuration valid\n")
	fmt.Fprintf(&b, "  dialect:  %s\n", r.Dialect)
	if r.Database != "" {
		fmt.Fprintf(&b, "  database: %s\n", r.Database)
	}
	fmt.Fprintf(&b, "  table:    %s %s\n", r.Table, r.Alias)
	fmt.Fprintf(&b, "  search:   %s, combine %s", r.Mode, r.Combine)
	keys := make([]string, 0, len(r.Mapping))
	for k := range r.Mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  mapping:  %s -> %s", k, r.Mapping[k])
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Validate a CUE configuration",
		Long: `Validate a configuration file, or a directory of .cue files forming
one package, against the treeq schema and print the resolved settings.

Without an argument the --config path is validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if path == "" {
		return NewExitError(ExitCommandError, "no configuration: pass a path or --config")
	}

	formatter.VerboseLog("Validating %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		var le *config.LoadError
		if !errors.As(err, &le) {
			return formatter.Fail("failed to load config", err)
		}
		if le.Code == config.ErrCodeNotFound {
			return formatter.Fail("failed to load config", err)
		}
		return outputValidationError(formatter, le)
	}

	return formatter.Success(ValidationResult{
		Valid:    true,
		Dialect:  cfg.Dialect.String(),
		Database: cfg.Database,
		Table:    cfg.Table,
		Alias:    cfg.Alias,
		Mode:     cfg.Mode.String(),
		Combine:  string(cfg.Combine),
		Mapping:  overriddenKeys(cfg.Mapping),
	})
}

// overriddenKeys lists the mapping entries that differ from the defaults.
func overriddenKeys(m tree.Mapping) map[string]string {
	out := map[string]string{}
	for _, key := range tree.Keys {
		if field := m.Field(key); field != key {
			out[key] = field
		}
	}
	return out
}

// outputValidationError reports a configuration rejected by the schema.
// Validation failures exit with ExitFailure.
func outputValidationError(formatter *OutputFormatter, le *config.LoadError) error {
	verr := &ValidationError{Code: le.Code, Message: le.Message}
	if le.Pos.IsValid() {
		verr.File = le.Pos.Filename()
		verr.Line = le.Pos.Line()
		verr.Column = le.Pos.Column()
	}

	if formatter.Format == "json" {
		_ = formatter.Error(le.Code, le.Message, ValidationResult{Valid: false, Error: verr})
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		if verr.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", verr.File, verr.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", verr.Code, verr.Message)
	}

	return reported(WrapExitError(ExitFailure, "validation failed", le))
}
