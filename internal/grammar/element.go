// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grammar is a token-level parser combinator library. Leaf matchers
// test one token (literal, case-insensitive literal, regex over text or tag);
// combinators compose them with ordered choice, sequence, optional,
// repetition and negative lookahead. Any element may carry a capture label,
// be hidden from output, or rewrite its captured text with an Action.
//
// Element trees are immutable once built. Modifiers (Named, Hide,
// WithAction) return copies, so a shared sub-grammar can be relabeled in one
// place without affecting its other uses, and a single tree can be matched
// from many goroutines at once.
package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/property-engine/pkg/types"
)

// Result is a successful match: the position after the last consumed token
// and the capture nodes produced, in source order.
type Result struct {
	End   int
	Nodes []*Node
}

// Element is a node in a grammar tree.
type Element interface {
	// Match attempts the element at tokens[pos]. A false return is an
	// ordinary mismatch, not an error.
	Match(tokens []types.Token, pos int) (Result, bool)

	// Labels reports every capture label the element can emit, in
	// declaration order, excluding hidden subtrees and lookaheads.
	Labels() []string

	// Named returns a copy that wraps its output in a node with the label.
	Named(label string) Element

	// Hide returns a copy that consumes tokens but emits no nodes.
	Hide() Element

	// WithAction returns a copy that runs the actions, in order, on its
	// output after each successful match.
	WithAction(actions ...Action) Element

	String() string
}

type kind int

const (
	kindWord kind = iota
	kindRegex
	kindTag
	kindAny
	kindFunc
	kindSeq
	kindOr
	kindOpt
	kindRepeat
	kindNot
)

func (k kind) leaf() bool {
	return k <= kindFunc
}

// MatchFunc is the contract for externally supplied matchers.
type MatchFunc func(tokens []types.Token, pos int) (Result, bool)

type element struct {
	kind kind

	label   string
	hidden  bool
	actions []Action

	// leaf state
	word     string
	fold     bool
	re       *regexp.Regexp
	fn       MatchFunc
	name     string
	fnLabels []string

	// composite state
	children []Element
	min, max int
}

func (e *element) clone() *element {
	c := *e
	c.actions = append([]Action(nil), e.actions...)
	return &c
}

func (e *element) Named(label string) Element {
	c := e.clone()
	c.label = label
	return c
}

func (e *element) Hide() Element {
	c := e.clone()
	c.hidden = true
	return c
}

func (e *element) WithAction(actions ...Action) Element {
	c := e.clone()
	c.actions = append(c.actions, actions...)
	return c
}

func (e *element) Match(tokens []types.Token, pos int) (Result, bool) {
	nodes, end, ok := e.parse(tokens, pos)
	if !ok {
		return Result{}, false
	}
	if e.hidden {
		return Result{End: end}, true
	}
	if e.label != "" {
		nodes = e.wrap(pos, end, nodes)
	}
	for _, a := range e.actions {
		nodes = a(tokens, pos, nodes)
	}
	return Result{End: end, Nodes: nodes}, true
}

// wrap applies the element's label. Leaf output is relabeled in place
// (leaf nodes are freshly allocated per match); composite output is
// nested under a new node.
func (e *element) wrap(start, end int, nodes []*Node) []*Node {
	if e.kind.leaf() && e.kind != kindFunc && len(nodes) == 1 {
		nodes[0].Label = e.label
		return nodes
	}
	return []*Node{{Label: e.label, Start: start, End: end, Children: nodes}}
}

func (e *element) parse(tokens []types.Token, pos int) ([]*Node, int, bool) {
	switch e.kind {
	case kindWord, kindRegex, kindTag, kindAny:
		if pos >= len(tokens) || !e.test(tokens[pos]) {
			return nil, pos, false
		}
		return []*Node{{Text: tokens[pos].Text, Start: pos, End: pos + 1}}, pos + 1, true

	case kindFunc:
		r, ok := e.fn(tokens, pos)
		if !ok {
			return nil, pos, false
		}
		return r.Nodes, r.End, true

	case kindSeq:
		var nodes []*Node
		cur := pos
		for _, c := range e.children {
			r, ok := c.Match(tokens, cur)
			if !ok {
				return nil, pos, false
			}
			nodes = append(nodes, r.Nodes...)
			cur = r.End
		}
		return nodes, cur, true

	case kindOr:
		for _, c := range e.children {
			if r, ok := c.Match(tokens, pos); ok {
				return r.Nodes, r.End, true
			}
		}
		return nil, pos, false

	case kindOpt:
		if r, ok := e.children[0].Match(tokens, pos); ok {
			return r.Nodes, r.End, true
		}
		return nil, pos, true

	case kindRepeat:
		var nodes []*Node
		cur, count := pos, 0
		for e.max == 0 || count < e.max {
			r, ok := e.children[0].Match(tokens, cur)
			if !ok {
				break
			}
			nodes = append(nodes, r.Nodes...)
			count++
			if r.End == cur {
				break
			}
			cur = r.End
		}
		if count < e.min {
			return nil, pos, false
		}
		return nodes, cur, true

	case kindNot:
		if _, ok := e.children[0].Match(tokens, pos); ok {
			return nil, pos, false
		}
		return nil, pos, true
	}
	panic(fmt.Sprintf("grammar: unknown element kind %d", e.kind))
}

func (e *element) test(t types.Token) bool {
	switch e.kind {
	case kindWord:
		if e.fold {
			return strings.EqualFold(t.Text, e.word)
		}
		return t.Text == e.word
	case kindRegex:
		return e.re.MatchString(t.Text)
	case kindTag:
		return e.re.MatchString(t.Tag)
	case kindAny:
		return true
	}
	return false
}

func (e *element) Labels() []string {
	if e.hidden || e.kind == kindNot {
		return nil
	}
	var out []string
	if e.label != "" {
		out = append(out, e.label)
	}
	if e.kind == kindFunc {
		out = append(out, e.fnLabels...)
	}
	for _, c := range e.children {
		out = append(out, c.Labels()...)
	}
	return dedupe(out)
}

func (e *element) String() string {
	var s string
	switch e.kind {
	case kindWord:
		if e.fold {
			s = fmt.Sprintf("I(%q)", e.word)
		} else {
			s = fmt.Sprintf("W(%q)", e.word)
		}
	case kindRegex:
		s = fmt.Sprintf("R(%q)", e.re.String())
	case kindTag:
		s = fmt.Sprintf("T(%q)", e.re.String())
	case kindAny:
		s = "Any()"
	case kindFunc:
		s = e.name
	case kindSeq:
		s = "Seq(" + joinElements(e.children) + ")"
	case kindOr:
		s = "Or(" + joinElements(e.children) + ")"
	case kindOpt:
		s = "Opt(" + e.children[0].String() + ")"
	case kindRepeat:
		s = fmt.Sprintf("Repeat(%s, %d, %d)", e.children[0], e.min, e.max)
	case kindNot:
		s = "Not(" + e.children[0].String() + ")"
	}
	if e.label != "" {
		s += fmt.Sprintf("(%q)", e.label)
	}
	if e.hidden {
		s += ".Hide()"
	}
	return s
}

func joinElements(elems []Element) string {
	parts := make([]string, len(elems))
	for i, c := range elems {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func dedupe(labels []string) []string {
	if len(labels) < 2 {
		return labels
	}
	seen := make(map[string]bool, len(labels))
	out := labels[:0]
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
