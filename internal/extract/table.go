// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"go.uber.org/zap"

	"github.com/pdiddy/property-engine/internal/entity"
	"github.com/pdiddy/property-engine/internal/grammar"
	"github.com/pdiddy/property-engine/internal/property"
	"github.com/pdiddy/property-engine/pkg/types"
)

// column is a table column whose heading matched a property grammar.
type column struct {
	index   int
	grammar *property.Grammar
	heading types.PropertyRecord
}

// extractTable emits one heading record per property column, then one
// record per cell value in that column. Cell records without units take
// the heading's units; when the table has a compound column, every cell
// record of a row is attached to that row's entity.
func (e *Extractor) extractTable(ti int, tbl types.Table) []types.PropertyRecord {
	entityCol := e.entityColumn(tbl.Headings)

	var out []types.PropertyRecord
	for _, col := range e.propertyColumns(tbl.Headings, entityCol) {
		h := col.heading
		h.Table, h.Column, h.Row = ti, col.index, -1
		out = append(out, h)

		for ri, row := range tbl.Rows {
			if col.index >= len(row) || len(row[col.index]) == 0 {
				continue
			}
			m, ok := grammar.Parse(col.grammar.Cell, row[col.index])
			if !ok {
				continue
			}
			recs := e.interp.Interpret(types.SourceCell, col.grammar.Def.Key, m.Nodes)
			var names, labels []string
			if entityCol >= 0 && entityCol < len(row) {
				names, labels = e.rowEntity(row[entityCol])
			}
			for i := range recs {
				if recs[i].Units == "" {
					recs[i].Units = h.Units
				}
				recs[i].Names, recs[i].Labels = names, labels
				recs[i].Specifier = h.Specifier
				recs[i].Table, recs[i].Column, recs[i].Row = ti, col.index, ri
			}
			out = append(out, recs...)
		}
	}
	return out
}

// entityColumn returns the index of the first heading naming the compound
// column, or -1.
func (e *Extractor) entityColumn(headings [][]types.Token) int {
	for i, h := range headings {
		if len(grammar.Scan(e.compoundHeading, h)) > 0 {
			return i
		}
	}
	return -1
}

// propertyColumns matches every heading against the heading grammars.
// The first grammar in catalog order that matches the heading from its
// first token claims the column.
func (e *Extractor) propertyColumns(headings [][]types.Token, entityCol int) []column {
	var cols []column
	for i, h := range headings {
		if i == entityCol || len(h) == 0 {
			continue
		}
		for _, gr := range e.grammars {
			m, ok := grammar.Parse(gr.Heading, h)
			if !ok {
				continue
			}
			recs := e.interp.Interpret(types.SourceHeading, gr.Def.Key, m.Nodes)
			rec := recs[0]
			rec.Specifier = types.JoinTokens(h[:titleEnd(h, m)])
			rec.Start, rec.End = m.Start, m.End
			cols = append(cols, column{index: i, grammar: gr, heading: rec})
			e.log.Debug("property column",
				zap.Int("column", i),
				zap.String("property", gr.Def.Key),
				zap.String("units", rec.Units),
			)
			break
		}
	}
	return cols
}

// titleEnd is the end of the heading title: the start of the units node
// when there is one, else the end of the match, less any trailing
// brackets or delimiters.
func titleEnd(h []types.Token, m grammar.Match) int {
	end := m.End
	if u := grammar.First(m.Nodes, property.LabelUnits); u != nil {
		end = u.Start
	}
	for end > m.Start+1 && titlePunct[h[end-1].Text] {
		end--
	}
	return end
}

var titlePunct = map[string]bool{
	"(": true, "[": true, ")": true, "]": true, "/": true,
	",": true, ":": true, ";": true, ".": true,
}

// rowEntity reads the entity named in a compound cell.
func (e *Extractor) rowEntity(cell []types.Token) (names, labels []string) {
	m, ok := grammar.Parse(e.compoundCell, cell)
	if !ok {
		return nil, nil
	}
	return entityOf(grammar.First(m.Nodes, entity.LabelCEM))
}
