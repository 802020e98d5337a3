// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"go.uber.org/zap"

	"github.com/pdiddy/property-engine/internal/entity"
	"github.com/pdiddy/property-engine/internal/grammar"
	"github.com/pdiddy/property-engine/internal/logging"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

// Interpreter turns the capture tree of one match into property records.
// It holds no state besides its logger and is safe for concurrent use.
type Interpreter struct {
	log *zap.Logger
}

// NewInterpreter returns an Interpreter logging to l (nil discards).
func NewInterpreter(l *zap.Logger) *Interpreter {
	return &Interpreter{log: logging.OrNop(l)}
}

// Interpret builds records from the nodes of one match.
//
// Phrase and cell matches yield one record per "measurement" node. The
// record takes the first "value" and "units" beneath the measurement; the
// specifier comes from the measurement or, failing that, from anywhere in
// the match, and the entity from the first "cem" node. A measurement
// without a value is logged and dropped.
//
// Heading matches yield exactly one record carrying only the units, which
// are empty when the heading gave none.
func (in *Interpreter) Interpret(source types.RecordSource, prop string, nodes []*grammar.Node) []types.PropertyRecord {
	if source == types.SourceHeading {
		rec := types.PropertyRecord{Property: prop, Source: source}
		if u := grammar.First(nodes, property.LabelUnits); u != nil {
			rec.Units = u.FlatText("")
		}
		return []types.PropertyRecord{rec}
	}

	names, labels := entityOf(grammar.First(nodes, entity.LabelCEM))
	phraseSpecifier := ""
	if s := grammar.First(nodes, property.LabelSpecifier); s != nil {
		phraseSpecifier = s.FlatText(" ")
	}

	var out []types.PropertyRecord
	for _, m := range grammar.All(nodes, property.LabelMeasurement) {
		value, ok := m.Lookup(property.LabelValue)
		if !ok || value == "" {
			in.log.Warn("measurement without value",
				zap.String("property", prop),
				zap.String("source", string(source)),
				zap.String("text", m.FlatText(" ")),
			)
			continue
		}
		rec := types.PropertyRecord{
			Property:  prop,
			Names:     names,
			Labels:    labels,
			Value:     value,
			Specifier: phraseSpecifier,
			Source:    source,
			Start:     m.Start,
			End:       m.End,
		}
		if u := m.First(property.LabelUnits); u != nil {
			rec.Units = u.FlatText("")
		}
		if s, ok := m.Lookup(property.LabelSpecifier); ok {
			rec.Specifier = s
		}
		out = append(out, rec)
	}
	return out
}

// entityOf reads the names and labels under a cem node.
func entityOf(cem *grammar.Node) (names, labels []string) {
	if cem == nil {
		return nil, nil
	}
	forest := []*grammar.Node{cem}
	return grammar.Texts(forest, entity.LabelName), grammar.Texts(forest, entity.LabelLabel)
}
