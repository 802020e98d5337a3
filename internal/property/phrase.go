// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package property

import (
	"github.com/pdiddy/property-engine/internal/entity"
	g "github.com/pdiddy/property-engine/internal/grammar"
)

// Connectives between a specifier and its value. Longer forms come first;
// "is" would otherwise shadow "is equal to".
var (
	article = g.Seq(
		g.Opt(g.Seq(g.Opt(g.I("has")), g.Opt(g.Or(g.I("a"), g.I("an"))))),
		g.Opt(g.I("the")),
	).Hide()

	connective = g.Opt(g.Or(
		g.Words("is equal to"),
		g.Words("equal to"),
		g.Words("is between"),
		g.Words("was found to be"),
		g.Words("were found to be"),
		g.I("is"),
		g.I("was"),
		g.I("of"),
		g.W("="),
	)).Hide()

	approximation = g.Opt(g.Or(
		g.Phrase("in the range [of]"),
		g.I("about"),
		g.I("around"),
		g.I("approximately"),
		g.I("ca."),
		g.I("ca"),
	)).Hide()

	resultVerb = g.Or(
		g.Seq(g.I("to"), g.Or(g.I("give"), g.I("afford"), g.I("yield"), g.I("obtain"))),
		g.I("affording"),
		g.I("afforded"),
		g.I("gave"),
		g.I("yielded"),
	).Hide()

	stateVerb = g.Seq(
		g.Or(g.I("is"), g.I("are"), g.Seq(g.Or(g.I("was"), g.I("were")), g.Opt(g.Words("found to be")))),
		g.Or(g.I("afforded"), g.I("obtained"), g.I("yielded")),
	).Hide()

	declaratoryVerb = g.Or(g.Words("is equal to"), g.I("is"), g.I("was"), g.W("=")).Hide()

	determiner = g.T(`^DT$`)
)

// newSpecifier matches the property's symbols and spelled-out names. A
// symbol may sit in brackets, and a spelled-out name may be followed by its
// bracketed symbol: "power conversion efficiency (PCE)".
func newSpecifier(symbols, names []g.Element) g.Element {
	var alts []g.Element
	if len(symbols) > 0 {
		sym := g.Or(symbols...)
		alts = append(alts, g.Seq(g.Opt(lbrct).Hide(), sym, g.Opt(rbrct).Hide()))
		for _, n := range names {
			alts = append(alts, g.Seq(n, g.Opt(g.Seq(lbrct, sym, rbrct)).Hide()))
		}
	} else {
		alts = append(alts, names...)
	}
	return g.Or(alts...).Named(LabelSpecifier).WithAction(g.Join)
}

// newMeasurement is specifier, connective words, value and units, labeled
// "measurement". Unitless properties have no units slot at all.
func newMeasurement(specifier, value, units g.Element) g.Element {
	parts := []g.Element{
		article,
		specifier,
		connective,
		approximation,
		g.Opt(delim).Hide(),
		value,
	}
	if units != nil {
		parts = append(parts, units)
	}
	return g.Seq(parts...).Named(LabelMeasurement)
}

// newPhrase combines the four prose templates in precedence order.
func newPhrase(rec entity.Recognizer, specifier, value, units, measurement g.Element) g.Element {
	cem := rec.Entity()
	anyEntity := g.Or(cem, rec.Label(), rec.LenientLabel())

	// An aside in brackets is skipped unless it holds the measurement
	// itself, in which case the bracket_any branch fails and the
	// measurement is matched inside the brackets.
	bracketAny := g.Seq(
		lbrct,
		g.OneOrMore(g.Seq(g.Not(measurement), g.Not(rbrct), g.Any())),
		rbrct,
	)

	filler := g.ZeroOrMore(g.Seq(g.Not(measurement), g.Not(cem), g.Any())).Hide()

	entityQualified := g.Seq(
		g.Opt(cem),
		g.Opt(g.I("having")).Hide(),
		g.Opt(delim).Hide(),
		g.Opt(bracketAny).Hide(),
		g.Opt(delim).Hide(),
		g.Opt(lbrct).Hide(),
		measurement,
		g.Opt(rbrct).Hide(),
	).Named(LabelPhrase)

	result := g.Seq(
		resultVerb,
		g.Opt(determiner).Hide(),
		anyEntity,
		filler,
		measurement,
	).Named(LabelPhrase)

	state := g.Seq(
		g.Or(cem, rec.Label()),
		stateVerb,
		filler,
		measurement,
	).Named(LabelPhrase)

	tail := []g.Element{value}
	if units != nil {
		tail = append(tail, units)
	}
	declaratory := g.Seq(
		g.I("the").Hide(),
		specifier,
		g.I("of").Hide(),
		anyEntity,
		declaratoryVerb,
		approximation,
		g.Opt(delim).Hide(),
		g.Seq(tail...).Named(LabelMeasurement),
	).Named(LabelPhrase)

	return g.Or(entityQualified, result, state, declaratory)
}
