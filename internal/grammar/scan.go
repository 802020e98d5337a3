// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import "github.com/pdiddy/property-engine/pkg/types"

// Match is one located occurrence of a grammar in a token sequence.
type Match struct {
	Start int
	End   int
	Nodes []*Node
}

// Scan finds non-overlapping matches of root left to right. After a match
// scanning resumes at its end; after a miss, or a match that consumed
// nothing, it advances one token.
func Scan(root Element, tokens []types.Token) []Match {
	var out []Match
	for i := 0; i < len(tokens); {
		r, ok := root.Match(tokens, i)
		if ok && r.End > i {
			out = append(out, Match{Start: i, End: r.End, Nodes: r.Nodes})
			i = r.End
			continue
		}
		i++
	}
	return out
}

// Parse matches root anchored at the first token. The match need not
// consume every token; callers that require a full match compare End with
// len(tokens).
func Parse(root Element, tokens []types.Token) (Match, bool) {
	r, ok := root.Match(tokens, 0)
	if !ok {
		return Match{}, false
	}
	return Match{Start: 0, End: r.End, Nodes: r.Nodes}, true
}
