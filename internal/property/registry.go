// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package property builds the per-property grammars from the declarative
// catalog. Every property shares one value grammar and one set of phrase
// templates; a Definition supplies only the vocabulary (symbols, names,
// units). Grammars are built once into a Registry and passed explicitly
// to whatever scans with them.
package property

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pdiddy/property-engine/internal/entity"
	g "github.com/pdiddy/property-engine/internal/grammar"
	"github.com/pdiddy/property-engine/pkg/types"
)

var (
	// ErrInvalidDefinition reports a definition that cannot produce a
	// well-formed grammar.
	ErrInvalidDefinition = errors.New("invalid property definition")

	// ErrUnknownProperty reports a registry lookup for a key that is not
	// registered.
	ErrUnknownProperty = errors.New("unknown property")
)

// reservedLabels may only be emitted by the builder itself.
var reservedLabels = []string{
	LabelValue, LabelUnits, LabelSpecifier, LabelMeasurement,
	LabelPhrase, LabelHeading, LabelCell, entity.LabelCEM,
}

// Grammar is the compiled grammar set for one property.
type Grammar struct {
	Def Definition

	// Specifier matches the property's symbols and names.
	Specifier g.Element

	// Measurement is specifier, connectives, value and units.
	Measurement g.Element

	// Phrase is the root prose grammar: the four templates in order.
	Phrase g.Element

	// Heading matches a table column heading.
	Heading g.Element

	// Cell matches a table data cell.
	Cell g.Element
}

// Root returns the grammar used for the given record source.
func (gr *Grammar) Root(source types.RecordSource) g.Element {
	switch source {
	case types.SourceHeading:
		return gr.Heading
	case types.SourceCell:
		return gr.Cell
	default:
		return gr.Phrase
	}
}

// Build compiles one definition. The static label sets are checked here so
// that a malformed grammar fails at startup instead of during a scan.
func Build(def Definition, rec entity.Recognizer) (*Grammar, error) {
	if def.Key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidDefinition)
	}
	if len(def.Symbols) == 0 && len(def.Phrases) == 0 {
		return nil, fmt.Errorf("%w: %s: no symbols or phrases", ErrInvalidDefinition, def.Key)
	}
	if def.Units != nil {
		if l := firstReserved(def.Units.Labels()); l != "" {
			return nil, fmt.Errorf("%w: %s: unit grammar emits reserved label %q", ErrInvalidDefinition, def.Key, l)
		}
	}
	for _, e := range []g.Element{rec.Entity(), rec.Label(), rec.LenientLabel()} {
		for _, l := range e.Labels() {
			if l != entity.LabelCEM && slices.Contains(reservedLabels, l) {
				return nil, fmt.Errorf("%w: %s: entity grammar emits reserved label %q", ErrInvalidDefinition, def.Key, l)
			}
		}
	}

	symbols := make([]g.Element, 0, len(def.Symbols))
	for _, s := range def.Symbols {
		if s == "" {
			return nil, fmt.Errorf("%w: %s: empty symbol", ErrInvalidDefinition, def.Key)
		}
		symbols = append(symbols, g.W(s))
	}
	names := make([]g.Element, 0, len(def.Phrases))
	for _, p := range def.Phrases {
		e, err := g.CompilePhrase(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.Key, err)
		}
		names = append(names, e)
	}
	titles := make([]g.Element, 0, len(def.Titles)+len(symbols)+len(names))
	for _, s := range def.Titles {
		titles = append(titles, g.W(s))
	}
	titles = append(titles, symbols...)
	titles = append(titles, names...)

	var units g.Element
	if def.Units != nil {
		units = def.Units.Named(LabelUnits).WithAction(g.Merge)
	}

	value := NewValueGrammar(def.Units)
	specifier := newSpecifier(symbols, names)
	measurement := newMeasurement(specifier, value, units)

	gr := &Grammar{
		Def:         def,
		Specifier:   specifier,
		Measurement: measurement,
		Phrase:      newPhrase(rec, specifier, value, units, measurement),
		Heading:     newHeading(g.Or(titles...), units),
		Cell:        newCell(value, units),
	}
	if err := gr.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.Key, err)
	}
	return gr, nil
}

func (gr *Grammar) validate() error {
	m := gr.Measurement.Labels()
	if !slices.Contains(m, LabelValue) {
		return errors.New("measurement emits no value")
	}
	if slices.Contains(m, LabelUnits) == gr.Def.Unitless() {
		return errors.New("measurement units do not match definition")
	}
	if slices.Contains(gr.Heading.Labels(), LabelValue) {
		return errors.New("heading emits a value")
	}
	for _, l := range gr.Specifier.Labels() {
		if l != LabelSpecifier {
			return fmt.Errorf("specifier emits %q", l)
		}
	}
	return nil
}

func firstReserved(labels []string) string {
	for _, l := range labels {
		if slices.Contains(reservedLabels, l) {
			return l
		}
	}
	return ""
}

// Registry holds the compiled grammars keyed by property. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	rec      entity.Recognizer
	keys     []string
	grammars map[string]*Grammar
}

// NewRegistry compiles every definition. Keys must be unique.
func NewRegistry(rec entity.Recognizer, defs []Definition) (*Registry, error) {
	r := &Registry{
		rec:      rec,
		grammars: make(map[string]*Grammar, len(defs)),
	}
	for _, def := range defs {
		if _, dup := r.grammars[def.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidDefinition, def.Key)
		}
		gr, err := Build(def, rec)
		if err != nil {
			return nil, err
		}
		r.grammars[def.Key] = gr
		r.keys = append(r.keys, def.Key)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for definitions known to be valid.
func MustNewRegistry(rec entity.Recognizer, defs []Definition) *Registry {
	r, err := NewRegistry(rec, defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Default builds the registry for the full catalog with the tag-driven
// entity recognizer.
func Default() (*Registry, error) {
	return NewRegistry(entity.NewTagRecognizer(), Catalog())
}

// Get returns the grammar for key.
func (r *Registry) Get(key string) (*Grammar, bool) {
	gr, ok := r.grammars[key]
	return gr, ok
}

// Keys returns the registered keys in catalog order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

// Grammars returns every grammar in catalog order.
func (r *Registry) Grammars() []*Grammar {
	out := make([]*Grammar, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.grammars[k]
	}
	return out
}

// Select returns the grammars for keys in catalog order. An empty keys
// slice selects everything.
func (r *Registry) Select(keys []string) ([]*Grammar, error) {
	if len(keys) == 0 {
		return r.Grammars(), nil
	}
	for _, k := range keys {
		if _, ok := r.grammars[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, k)
		}
	}
	var out []*Grammar
	for _, k := range r.keys {
		if slices.Contains(keys, k) {
			out = append(out, r.grammars[k])
		}
	}
	return out, nil
}

// Recognizer returns the entity recognizer the grammars were built with.
func (r *Registry) Recognizer() entity.Recognizer {
	return r.rec
}
