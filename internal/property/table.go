// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package property

import (
	"github.com/pdiddy/property-engine/internal/entity"
	g "github.com/pdiddy/property-engine/internal/grammar"
)

var delims = g.ZeroOrMore(delim).Hide()

// newHeading matches a column heading naming the property, optionally
// followed by its units in brackets: "PCE (%)", "Eg / eV". The title
// itself is hidden. A heading whose units are present but unrecognized
// still matches, with no units node.
func newHeading(title, units g.Element) g.Element {
	parts := []g.Element{title.Hide(), delims}
	if units != nil {
		parts = append(parts, g.Opt(g.Seq(
			g.Opt(g.Or(lbrct, g.W("/"))).Hide(),
			units,
			g.Opt(rbrct).Hide(),
		)))
	}
	return g.Seq(parts...).Named(LabelHeading)
}

// newCell matches one or more delimited values in a data cell, each with
// an optional per-value unit override: "5.2, 6.1", "1.9 (eV)".
func newCell(value, units g.Element) g.Element {
	parts := []g.Element{value}
	if units != nil {
		parts = append(parts, g.Opt(g.Seq(g.Opt(lbrct).Hide(), units, g.Opt(rbrct).Hide())))
	}
	entry := g.Seq(parts...).Named(LabelMeasurement)
	return g.Seq(
		entry,
		g.ZeroOrMore(g.Seq(g.OneOrMore(delim).Hide(), entry)),
	).Named(LabelCell)
}

const compoundHeadingPattern = `(?i)(^|\b)(comp((oun)?d)?|molecule|ligand|oligomer|complex|dye|porphyrin|substance|sample|material|catalyst|acronym|isomer|(co)?polymer|chromophore|species|quinone|ether|diene|adduct|acid|radical|monomer|amine|analyte|product|system|(photo)?sensiti[sz]er|phthalocyanine|MPc)(e?s)?($|\b)`

// CompoundHeading matches a column heading that names the entity column of
// a table ("Compound", "Polymers", "Sample").
func CompoundHeading() g.Element {
	return g.R(compoundHeadingPattern)
}

// CompoundCell matches the entity named in a row's compound cell. Tried in
// order: a label filling the cell alone, an entity mention, then the whole
// cell text as a name unless the cell is purely numeric. The result is a
// single "cem" node.
func CompoundCell(rec entity.Recognizer) g.Element {
	numeric := g.R(`^[\d\.]+$`)
	anyName := g.Seq(
		g.Not(g.Seq(g.OneOrMore(numeric), g.Not(g.Any()))),
		g.OneOrMore(g.Seq(g.Not(lbrct), g.Any())).Named(entity.LabelName).WithAction(g.Join, g.FixWhitespace),
		g.Opt(g.Seq(lbrct.Hide(), rec.LenientLabel(), rbrct.Hide())),
	).Named(entity.LabelCEM)
	return g.Or(
		g.Seq(rec.Label(), g.Not(g.Any())),
		g.Seq(rec.LenientLabel(), g.Not(g.Any())),
		rec.Entity(),
		anyName,
	)
}
