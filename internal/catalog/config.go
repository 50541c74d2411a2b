package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"formula/internal/generics"
	"formula/internal/signature"
	"formula/internal/types"
)

// ConfigFileName is the file Discover looks for.
const ConfigFileName = "formula.toml"

// Config is the decoded form of formula.toml.
type Config struct {
	// Path is the file the config was read from; empty for the zero config.
	Path       string         `toml:"-"`
	Settings   Settings       `toml:"settings"`
	Functions  []FunctionDecl `toml:"function"`
	Properties []PropertyDecl `toml:"property"`
}

// Settings holds CLI defaults. Flags given explicitly win over these.
type Settings struct {
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Color          string `toml:"color"`
}

// FunctionDecl is one [[function]] table.
type FunctionDecl struct {
	Name     string        `toml:"name"`
	Category string        `toml:"category"`
	Detail   string        `toml:"detail"`
	Head     []ParamDecl   `toml:"head"`
	Repeat   []ParamDecl   `toml:"repeat"`
	Tail     []ParamDecl   `toml:"tail"`
	Returns  string        `toml:"returns"`
	Generics []GenericDecl `toml:"generics"`
}

// ParamDecl is one parameter of a FunctionDecl.
type ParamDecl struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Optional bool   `toml:"optional"`
}

// GenericDecl declares a generic id used by a FunctionDecl.
type GenericDecl struct {
	ID   uint32 `toml:"id"`
	Kind string `toml:"kind"`
}

// PropertyDecl is one [[property]] table.
type PropertyDecl struct {
	Name           string `toml:"name"`
	Type           string `toml:"type"`
	DisabledReason string `toml:"disabled_reason"`
}

// Discover walks from startDir up to the filesystem root looking for
// formula.toml. It reports false when no file exists.
func Discover(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig decodes and checks the file at path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.check(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// ParseConfig decodes TOML text; name is used in error messages.
func ParseConfig(name, text string) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	cfg.Path = name
	if err := cfg.check(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &cfg, nil
}

func (cfg *Config) check(meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if meta.IsDefined("settings", "color") {
		switch cfg.Settings.Color {
		case "auto", "on", "off":
		default:
			return fmt.Errorf("invalid [settings].color %q (expected: auto|on|off)", cfg.Settings.Color)
		}
	}
	if cfg.Settings.MaxDiagnostics < 0 {
		return fmt.Errorf("[settings].max_diagnostics must not be negative")
	}
	for i, fn := range cfg.Functions {
		if fn.Name == "" {
			return fmt.Errorf("missing [[function]].name (entry %d)", i+1)
		}
		if fn.Returns == "" {
			return fmt.Errorf("function %q: missing returns", fn.Name)
		}
	}
	for i, p := range cfg.Properties {
		if p.Name == "" {
			return fmt.Errorf("missing [[property]].name (entry %d)", i+1)
		}
		if p.Type == "" {
			return fmt.Errorf("property %q: missing type", p.Name)
		}
	}
	return nil
}

// Signature converts the declaration into a validated FunctionSig.
func (d FunctionDecl) Signature() (*signature.FunctionSig, error) {
	cat := signature.General
	if d.Category != "" {
		c, err := signature.ParseCategory(d.Category)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", d.Name, err)
		}
		cat = c
	}
	head, err := convertParams(d.Head)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", d.Name, err)
	}
	repeat, err := convertParams(d.Repeat)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", d.Name, err)
	}
	tail, err := convertParams(d.Tail)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", d.Name, err)
	}
	shape, err := signature.NewParamShape(head, repeat, tail)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", d.Name, err)
	}
	ret, err := types.ParseLabel(d.Returns)
	if err != nil {
		return nil, fmt.Errorf("function %q: returns: %w", d.Name, err)
	}
	var gens []signature.GenericParam
	for _, g := range d.Generics {
		kind, err := generics.ParseKind(g.Kind)
		if err != nil {
			return nil, fmt.Errorf("function %q: generic T%d: %w", d.Name, g.ID, err)
		}
		gens = append(gens, signature.GenericParam{ID: types.GenericID(g.ID), Kind: kind})
	}
	detail := d.Detail
	if detail == "" {
		detail = d.Name + "(...)"
	}
	return signature.NewBuiltin(cat, detail, d.Name, shape, ret, gens...)
}

func convertParams(decls []ParamDecl) ([]signature.ParamSig, error) {
	out := make([]signature.ParamSig, 0, len(decls))
	for _, pd := range decls {
		if pd.Name == "" {
			return nil, fmt.Errorf("parameter: %w", ErrEmptyName)
		}
		ty, err := types.ParseLabel(pd.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", pd.Name, err)
		}
		out = append(out, signature.ParamSig{Name: pd.Name, Ty: ty, Optional: pd.Optional})
	}
	return out, nil
}

// Property converts the declaration into a Property.
func (d PropertyDecl) Property() (Property, error) {
	ty, err := types.ParseLabel(d.Type)
	if err != nil {
		return Property{}, fmt.Errorf("property %q: %w", d.Name, err)
	}
	return Property{Name: d.Name, Ty: ty, DisabledReason: d.DisabledReason}, nil
}

// FromConfig builds the builtin catalog extended by cfg. A nil cfg yields
// the builtins alone. Every malformed declaration is reported.
func FromConfig(cfg *Config) (*Catalog, error) {
	sigs, err := Builtins()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Build(sigs, nil)
	}
	var errs []error
	for _, d := range cfg.Functions {
		sig, err := d.Signature()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sigs = append(sigs, sig)
	}
	props := make([]Property, 0, len(cfg.Properties))
	for _, d := range cfg.Properties {
		p, err := d.Property()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		props = append(props, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	cat, err := Build(sigs, props)
	if err != nil && cfg.Path != "" {
		return nil, fmt.Errorf("%s: %w", cfg.Path, err)
	}
	return cat, err
}
