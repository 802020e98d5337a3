// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import (
	"strings"

	"github.com/pdiddy/property-engine/internal/grammar"
	"github.com/pdiddy/property-engine/pkg/types"
)

// Span matches one BIO-tagged span: a B-<type> token for any of the given
// types followed by its I-<type> continuation tokens. The output is a
// single unlabeled node whose text is the span tokens joined by spaces.
func Span(entityTypes ...string) grammar.Element {
	allowed := make(map[string]bool, len(entityTypes))
	for _, t := range entityTypes {
		allowed[t] = true
	}
	name := "Span(" + strings.Join(entityTypes, "|") + ")"
	return grammar.Func(name, nil, func(tokens []types.Token, pos int) (grammar.Result, bool) {
		if pos >= len(tokens) {
			return grammar.Result{}, false
		}
		kind, ok := strings.CutPrefix(tokens[pos].Tag, "B-")
		if !ok || !allowed[kind] {
			return grammar.Result{}, false
		}
		end := pos + 1
		for end < len(tokens) && tokens[end].Tag == "I-"+kind {
			end++
		}
		return grammar.Result{
			End: end,
			Nodes: []*grammar.Node{{
				Text:  types.JoinTokens(tokens[pos:end]),
				Start: pos,
				End:   end,
			}},
		}, true
	})
}
