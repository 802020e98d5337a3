// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"regexp"
	"strings"

	"github.com/pdiddy/property-engine/pkg/types"
)

// Action rewrites the nodes produced by a successful match. It receives
// the full token slice and the match start offset. Actions must not
// modify their input nodes; they return replacements.
type Action func(tokens []types.Token, start int, nodes []*Node) []*Node

// Merge collapses the output into a single node whose text is every leaf
// text concatenated without separators. The node keeps the label of the
// first output node and spans all of them. "10", "-", "20" becomes "10-20".
func Merge(tokens []types.Token, start int, nodes []*Node) []*Node {
	return collapse(nodes, "")
}

// Join is Merge with a single space between leaf texts, for multi-word
// values such as "10 to 20".
func Join(tokens []types.Token, start int, nodes []*Node) []*Node {
	return collapse(nodes, " ")
}

func collapse(nodes []*Node, sep string) []*Node {
	if len(nodes) == 0 {
		return nodes
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if t := n.FlatText(sep); t != "" {
			parts = append(parts, t)
		}
	}
	return []*Node{{
		Label: nodes[0].Label,
		Text:  strings.Join(parts, sep),
		Start: nodes[0].Start,
		End:   nodes[len(nodes)-1].End,
	}}
}

var (
	spacedHyphen = regexp.MustCompile(` ([-‐‑‒–—−]) `)
	spacedDash   = regexp.MustCompile(`- (.) -`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// FixWhitespace tidies tokenizer spacing in every text beneath the output:
// "a , b" becomes "a, b", spaced hyphens are closed up and "( x )"
// becomes "(x)".
func FixWhitespace(tokens []types.Token, start int, nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		c := n.Clone()
		fixNode(c)
		out[i] = c
	}
	return out
}

func fixNode(n *Node) {
	n.Text = fixText(n.Text)
	for _, c := range n.Children {
		fixNode(c)
	}
}

func fixText(s string) string {
	if s == "" {
		return s
	}
	s = spaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " , ", ", ")
	s = spacedHyphen.ReplaceAllString(s, "$1")
	s = spacedDash.ReplaceAllString(s, "-$1-")
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, " )", ")")
	return strings.TrimSpace(s)
}
