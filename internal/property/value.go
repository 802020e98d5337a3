// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package property

import (
	g "github.com/pdiddy/property-engine/internal/grammar"
)

// Capture labels shared by every property grammar.
const (
	LabelValue       = "value"
	LabelUnits       = "units"
	LabelSpecifier   = "specifier"
	LabelMeasurement = "measurement"
	LabelPhrase      = "phrase"
	LabelHeading     = "heading"
	LabelCell        = "cell"
)

// Token patterns. Every numeric pattern is anchored to the whole token and
// accepts a parenthesized uncertainty suffix, so "1.23(4)" stays one value.
const (
	numberPattern       = `^[+\-–−]?\d+(\.\d+)?(\(\d+\))?$`
	signedNumberPattern = `^[+\-–−]\d+(\.\d+)?(\(\d+\))?$`
	joinedRangePattern  = `^[+\-–−]?\d+(\.\d+)?(\(\d+\))?[\-‐‑‒–—−~∼˜]\d+(\.\d+)?(\(\d+\))?$`
	rangeSepPattern     = `^[\-±–−~∼˜]$`
	leadingMinusPattern = `^[\-–−]$`
	comparatorPattern   = `^[~∼˜<>≤≥]$`
	signMarkerPattern   = `^[\-–−±∓⨤⨦]$`
)

var (
	lbrct = g.R(`^[\(\[]$`)
	rbrct = g.R(`^[\)\]]$`)
	delim = g.R(`^[:;\.,]$`)
)

// NewValueGrammar builds the value grammar shared by every property. Range
// shapes are tried before the bare value so that "10-20" is never split
// into "10" and a signed "-20":
//
//	joined  "10-20"           one token
//	spaced  "10", "-", "20"   merged to "10-20"
//	to      "10", "to", "20"  joined to "10 to 20"
//	bare    "~", "5.2"        merged to "~5.2"
//
// units, when non-nil, may appear hidden between the two bounds of a spaced
// or textual range ("1.5 eV - 1.8 eV"). A leading comparator only combines
// with a bare value, so "<", "10-20" fails every branch. The spaced
// separator set includes "±", which keeps "5.2 ± 0.3" as one value.
func NewValueGrammar(units g.Element) g.Element {
	num := g.R(numberPattern)
	signed := g.R(signedNumberPattern)

	var gap g.Element = g.Seq()
	if units != nil {
		gap = g.Opt(units).Hide()
	}

	joined := g.R(joinedRangePattern).Named(LabelValue).WithAction(g.Merge)
	spaced := g.Seq(
		num, gap,
		g.Or(g.Seq(g.R(rangeSepPattern), num), signed),
	).Named(LabelValue).WithAction(g.Merge)
	to := g.Seq(
		num, gap,
		g.Or(g.Seq(g.Or(g.I("to"), g.I("and")), num), signed),
	).Named(LabelValue).WithAction(g.Join)

	rng := g.Seq(
		g.Opt(g.R(leadingMinusPattern)),
		g.Or(joined, spaced, to),
	).Named(LabelValue).WithAction(g.Merge)

	bare := g.Seq(
		g.Opt(g.R(comparatorPattern)),
		g.Opt(g.R(signMarkerPattern)),
		num,
	).Named(LabelValue).WithAction(g.Merge)

	return g.Seq(
		g.Opt(lbrct).Hide(),
		g.Or(rng, bare),
		g.Opt(rbrct).Hide(),
	)
}
