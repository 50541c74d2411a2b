// Package catalog holds the immutable set of callable signatures and page
// properties an analysis runs against.
//
// A Catalog is built once (from the static builtin table, optionally extended
// by formula.toml or restored from a snapshot) and then shared read-only by
// any number of goroutines.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/text/unicode/norm"

	"formula/internal/signature"
	"formula/internal/types"
)

// Property is a page property that prop("Name") can read.
type Property struct {
	Name string   `msgpack:"name"`
	Ty   types.Ty `msgpack:"ty"`
	// DisabledReason, when set, makes every reference to the property an error.
	DisabledReason string `msgpack:"disabled,omitempty"`
}

// Catalog is a validated, read-only lookup of functions and properties.
type Catalog struct {
	funcs   []*signature.FunctionSig
	byName  map[string]*signature.FunctionSig
	postfix map[string]struct{}
	props   []Property
	propIdx map[string]int
}

// DuplicateError reports a name declared twice.
type DuplicateError struct {
	Kind string // "function" or "property"
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Name)
}

// ErrEmptyName is returned for a function or property without a name.
var ErrEmptyName = errors.New("empty name")

// NormalizeName folds a function or property name to NFC so that composed
// and decomposed spellings resolve to the same entry.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// Build validates sigs and props and assembles a catalog. All problems are
// reported together; a partially valid catalog is never returned.
func Build(sigs []*signature.FunctionSig, props []Property) (*Catalog, error) {
	c := &Catalog{
		funcs:   make([]*signature.FunctionSig, 0, len(sigs)),
		byName:  make(map[string]*signature.FunctionSig, len(sigs)),
		postfix: make(map[string]struct{}),
		props:   make([]Property, 0, len(props)),
		propIdx: make(map[string]int, len(props)),
	}
	var errs []error
	for _, sig := range sigs {
		if sig == nil {
			errs = append(errs, errors.New("nil function signature"))
			continue
		}
		key := NormalizeName(sig.Name)
		if key == "" {
			errs = append(errs, fmt.Errorf("function: %w", ErrEmptyName))
			continue
		}
		if _, dup := c.byName[key]; dup {
			errs = append(errs, &DuplicateError{Kind: "function", Name: sig.Name})
			continue
		}
		c.byName[key] = sig
		c.funcs = append(c.funcs, sig)
		if PostfixCapable(sig) {
			c.postfix[key] = struct{}{}
		}
	}
	for _, p := range props {
		key := NormalizeName(p.Name)
		if key == "" {
			errs = append(errs, fmt.Errorf("property: %w", ErrEmptyName))
			continue
		}
		if p.Ty.IsNone() {
			errs = append(errs, fmt.Errorf("property %q: missing type", p.Name))
			continue
		}
		if _, dup := c.propIdx[key]; dup {
			errs = append(errs, &DuplicateError{Kind: "property", Name: p.Name})
			continue
		}
		p.Name = key
		c.propIdx[key] = len(c.props)
		c.props = append(c.props, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Default returns a catalog holding the builtin functions and no properties.
func Default() (*Catalog, error) {
	sigs, err := Builtins()
	if err != nil {
		return nil, err
	}
	return Build(sigs, nil)
}

// MustDefault is Default that panics on a malformed builtin table.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// PostfixCapable reports whether sig may be called as receiver.fn(...): it
// needs a head or repeat slot for the receiver and at least one more
// displayed parameter.
func PostfixCapable(sig *signature.FunctionSig) bool {
	p := sig.Params
	return (len(p.Head) > 0 || len(p.Repeat) > 0) && sig.DisplayParamsLen() >= 2
}

// Lookup finds a function by name.
func (c *Catalog) Lookup(name string) (*signature.FunctionSig, bool) {
	sig, ok := c.byName[NormalizeName(name)]
	return sig, ok
}

// Functions returns every function in declaration order.
func (c *Catalog) Functions() []*signature.FunctionSig {
	return slices.Clone(c.funcs)
}

// Len returns the number of functions.
func (c *Catalog) Len() int { return len(c.funcs) }

// ByCategory returns the functions of one category in declaration order.
func (c *Catalog) ByCategory(cat signature.Category) []*signature.FunctionSig {
	var out []*signature.FunctionSig
	for _, sig := range c.funcs {
		if sig.Category == cat {
			out = append(out, sig)
		}
	}
	return out
}

// IsPostfixCapable reports whether name may be used in member-call position.
func (c *Catalog) IsPostfixCapable(name string) bool {
	_, ok := c.postfix[NormalizeName(name)]
	return ok
}

// PostfixNames returns the sorted postfix-capable function names.
func (c *Catalog) PostfixNames() []string {
	out := make([]string, 0, len(c.postfix))
	for name := range c.postfix {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Property looks up a page property by name.
func (c *Catalog) Property(name string) (Property, bool) {
	idx, ok := c.propIdx[NormalizeName(name)]
	if !ok {
		return Property{}, false
	}
	return c.props[idx], true
}

// Properties returns every property in declaration order.
func (c *Catalog) Properties() []Property {
	return slices.Clone(c.props)
}

// WithProperties returns a copy of c whose property set is replaced by props.
func (c *Catalog) WithProperties(props []Property) (*Catalog, error) {
	return Build(c.funcs, props)
}
