// Package config loads treeq configuration written in CUE.
//
// A configuration file is unified with the embedded #Config schema, so
// defaults are filled in and unknown fields are rejected:
//
//	dialect:  "postgres"
//	database: "tree.db"
//	mapping: {left: "lft", right: "rgt"}
//	search: {mode: "self,descendants", combine: "and"}
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/treeq/internal/dialect"
	"github.com/roach88/treeq/internal/store"
	"github.com/roach88/treeq/internal/tree"
)

//go:embed schema.cue
var schemaCUE string

// Config is a loaded, validated configuration.
type Config struct {
	Dialect  dialect.Dialect
	Database string
	Table    string
	Alias    string
	Mapping  tree.Mapping
	Mode     tree.SearchMode
	Combine  tree.Combine
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Dialect: dialect.SQLite,
		Table:   "nodes",
		Alias:   "n",
		Mapping: StoreMapping(nil),
		Mode:    tree.SearchEverywhere,
		Combine: tree.CombineOr,
	}
}

// StoreMapping resolves overrides on top of the column names of the bundled
// nodes table, so keys left unset match store.Node.
func StoreMapping(overrides map[string]string) tree.Mapping {
	merged := store.ColumnMapping()
	for key, field := range overrides {
		if field != "" {
			merged[key] = field
		}
	}
	return tree.ResolveMapping(merged)
}

// TreeOptions returns the compile options matching the configuration.
func (c *Config) TreeOptions() []tree.Option {
	return []tree.Option{
		tree.WithMapping(c.Mapping),
		tree.WithMode(c.Mode),
		tree.WithCombine(c.Combine),
	}
}

// rawConfig mirrors #Config for decoding.
type rawConfig struct {
	Dialect  string            `json:"dialect"`
	Database string            `json:"database"`
	Table    string            `json:"table"`
	Alias    string            `json:"alias"`
	Mapping  map[string]string `json:"mapping"`
	Search   struct {
		Mode    string `json:"mode"`
		Combine string `json:"combine"`
	} `json:"search"`
}

// Load reads a configuration file, or every .cue file of a directory
// forming one package.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config: %v", err)}
	}

	ctx := cuecontext.New()
	if !info.IsDir() {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading config: %v", err)}
		}
		return decode(ctx, ctx.CompileBytes(src, cue.Filename(path)))
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}
	return decode(ctx, ctx.BuildInstance(inst))
}

// Parse loads a configuration from source text. filename is used in
// error positions only.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()
	return decode(ctx, ctx.CompileBytes(src, cue.Filename(filename)))
}

func decode(ctx *cue.Context, v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, loadErrorFrom(ErrCodeBuildFailed, err)
	}

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, loadErrorFrom(ErrCodeInvalidConfig, err)
	}

	var raw rawConfig
	if err := unified.Decode(&raw); err != nil {
		return nil, loadErrorFrom(ErrCodeInvalidConfig, err)
	}

	return fromRaw(raw, v)
}

// fromRaw converts decoded values. v is the caller's value, so error
// positions point into their file rather than the schema.
func fromRaw(raw rawConfig, v cue.Value) (*Config, error) {
	cfg := &Config{
		Database: raw.Database,
		Table:    raw.Table,
		Alias:    raw.Alias,
		Mapping:  StoreMapping(raw.Mapping),
	}

	var err error
	if cfg.Dialect, err = dialect.Parse(raw.Dialect); err != nil {
		return nil, fieldError(v, "dialect", err)
	}
	if cfg.Mode, err = tree.ParseSearchMode(raw.Search.Mode); err != nil {
		return nil, fieldError(v, "search.mode", err)
	}
	if cfg.Combine, err = tree.ParseCombine(raw.Search.Combine); err != nil {
		return nil, fieldError(v, "search.combine", err)
	}
	return cfg, nil
}

func fieldError(v cue.Value, path string, err error) *LoadError {
	return &LoadError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("%s: %v", path, err),
		Pos:     v.LookupPath(cue.ParsePath(path)).Pos(),
	}
}

