// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entity supplies the chemical-entity sub-grammars that property
// phrases call into. Recognition itself happens upstream: tokens arrive
// carrying BIO tags from a named-entity tagger, and the default
// TagRecognizer turns tagged spans into grammar matches. Label heuristics
// ("compound 3a", "P1") cover identifiers the tagger misses.
//
// Every element returned here emits a single "cem" node whose children are
// "name" and/or "label" nodes.
package entity

import (
	"github.com/pdiddy/property-engine/internal/grammar"
)

// Capture labels emitted by recognizers.
const (
	LabelCEM   = "cem"
	LabelName  = "name"
	LabelLabel = "label"
)

// Recognizer exposes entity mentions as grammar elements with the same
// match contract as any other element.
type Recognizer interface {
	// Entity matches a chemical entity mention: a tagged name with an
	// optional bracketed label, a typed label, or a solvent.
	Entity() grammar.Element

	// Label matches a chemical identifier introduced with enough context
	// to be unambiguous ("compound 3a", a LABEL-tagged span).
	Label() grammar.Element

	// LenientLabel matches a bare identifier token ("3a", "P1").
	LenientLabel() grammar.Element

	// Solvent matches a SOLVENT-tagged span.
	Solvent() grammar.Element
}

// BIO entity types read from token tags. CM is the generic chemical
// mention; the remaining name types follow the chemical NER label set.
const (
	TypeCM      = "CM"
	TypeIUPAC   = "IUPAC"
	TypeCAS     = "CAS"
	TypeFormula = "FORMULA"
	TypeSMILES  = "SMILES"
	TypeCommon  = "COMMON"
	TypeGeneric = "GENERIC"
	TypeMarkush = "MARKUSH"
	TypeLabel   = "LABEL"
	TypeSolvent = "SOLVENT"
)

// NameTypes lists the entity types treated as chemical names.
var NameTypes = []string{
	TypeCM, TypeIUPAC, TypeCAS, TypeFormula,
	TypeSMILES, TypeCommon, TypeGeneric, TypeMarkush,
}

// labelTypeWords introduce a label in running text: "compound 3a",
// "polymers P1".
const labelTypeWords = `(?i)^(comp((oun)?d)?|molecule|ligand|oligomer|complex|dye|porphyrin|substance|sample|material|catalyst|isomer|(co)?polymer|chromophore|species|monomer|product|derivative|film|device)(e?s)?$`

const (
	strictLabel  = `^([1-9]\d{0,2}[a-z]{0,2}|[A-Z]{1,3}-?\d{1,3}[a-z]?|[IVX]{1,4}[a-z]?)$`
	lenientLabel = `^([1-9]\d{0,2}[a-z]{1,2}|[A-Z]{1,3}-?\d{1,3}[a-z]?)$`
)

// TagRecognizer reads entity spans from BIO token tags.
type TagRecognizer struct {
	entity  grammar.Element
	label   grammar.Element
	lenient grammar.Element
	solvent grammar.Element
}

// NewTagRecognizer builds the tag-driven recognizer. The returned elements
// are immutable and safe to share.
func NewTagRecognizer() *TagRecognizer {
	lbrct := grammar.R(`^[\(\[]$`).Hide()
	rbrct := grammar.R(`^[\)\]]$`).Hide()

	name := Span(NameTypes...).Named(LabelName).WithAction(grammar.FixWhitespace)
	solventName := Span(TypeSolvent).Named(LabelName)
	taggedLabel := Span(TypeLabel).Named(LabelLabel)
	strict := grammar.R(strictLabel).Named(LabelLabel)
	sep := grammar.Or(grammar.W(","), grammar.I("and"), grammar.I("or")).Hide()
	typed := grammar.Seq(
		grammar.R(labelTypeWords).Hide(),
		strict,
		grammar.ZeroOrMore(grammar.Seq(sep, strict)),
	)

	r := &TagRecognizer{}
	r.label = grammar.Or(taggedLabel, typed).Named(LabelCEM)
	r.lenient = grammar.Seq(grammar.R(lenientLabel).Named(LabelLabel)).Named(LabelCEM)
	r.solvent = grammar.Seq(solventName).Named(LabelCEM)
	r.entity = grammar.Or(
		grammar.Seq(name, grammar.Opt(grammar.Seq(lbrct, grammar.Or(taggedLabel, strict), rbrct))),
		taggedLabel,
		typed,
		solventName,
	).Named(LabelCEM)
	return r
}

func (r *TagRecognizer) Entity() grammar.Element       { return r.entity }
func (r *TagRecognizer) Label() grammar.Element        { return r.label }
func (r *TagRecognizer) LenientLabel() grammar.Element { return r.lenient }
func (r *TagRecognizer) Solvent() grammar.Element      { return r.solvent }
