// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import "strings"

// Node is one element of a capture tree. Leaf nodes carry Text; composite
// nodes carry Children. Start and End are token offsets into the matched
// token slice.
type Node struct {
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Text     string  `json:"text,omitempty" yaml:"text,omitempty"`
	Start    int     `json:"start" yaml:"start"`
	End      int     `json:"end" yaml:"end"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// First returns the first descendant of n (pre-order, n excluded) with the
// label, or nil when there is none. A non-nil result with empty Text means
// the label was captured but matched nothing textual.
func (n *Node) First(label string) *Node {
	return First(n.Children, label)
}

// All returns the outermost descendants of n with the label, in pre-order.
func (n *Node) All(label string) []*Node {
	return All(n.Children, label)
}

// Lookup returns the text of the first descendant with the label and
// whether such a descendant exists.
func (n *Node) Lookup(label string) (string, bool) {
	c := n.First(label)
	if c == nil {
		return "", false
	}
	return c.FlatText(" "), true
}

// FlatText returns n's own text, or for composites the text of every leaf
// beneath it joined with sep.
func (n *Node) FlatText(sep string) string {
	if len(n.Children) == 0 {
		return n.Text
	}
	parts := make([]string, 0, len(n.Children))
	for _, leaf := range n.leaves() {
		if leaf.Text != "" {
			parts = append(parts, leaf.Text)
		}
	}
	return strings.Join(parts, sep)
}

func (n *Node) leaves() []*Node {
	if len(n.Children) == 0 {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.leaves()...)
	}
	return out
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// First searches a forest in pre-order, roots included.
func First(nodes []*Node, label string) *Node {
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
		if f := First(n.Children, label); f != nil {
			return f
		}
	}
	return nil
}

// All collects the outermost nodes in a forest with the label, roots
// included. It does not descend into a node once it matches.
func All(nodes []*Node, label string) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Label == label {
			out = append(out, n)
			continue
		}
		out = append(out, All(n.Children, label)...)
	}
	return out
}

// Texts returns FlatText(" ") of every outermost node with the label.
func Texts(nodes []*Node, label string) []string {
	found := All(nodes, label)
	if len(found) == 0 {
		return nil
	}
	out := make([]string, len(found))
	for i, n := range found {
		out[i] = n.FlatText(" ")
	}
	return out
}

// Labels returns every label present in the forest in pre-order, with
// duplicates removed.
func Labels(nodes []*Node) []string {
	var out []string
	var walk func([]*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			if n.Label != "" {
				out = append(out, n.Label)
			}
			walk(n.Children)
		}
	}
	walk(nodes)
	return dedupe(out)
}
