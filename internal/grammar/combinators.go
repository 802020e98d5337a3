// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import "fmt"

// Seq matches each element in order. Output is the concatenation of the
// children's output. An empty Seq matches without consuming.
func Seq(elems ...Element) Element {
	return &element{kind: kindSeq, children: elems}
}

// Or tries each alternative in order and commits to the first that
// matches. There is no longest-match selection and no backtracking into a
// committed alternative.
func Or(elems ...Element) Element {
	return &element{kind: kindOr, children: elems}
}

// Opt matches e or nothing. It never fails.
func Opt(e Element) Element {
	return &element{kind: kindOpt, children: []Element{e}}
}

// Repeat matches e greedily between min and max times. max == 0 means
// unbounded. Repetition stops early when e matches without consuming.
func Repeat(e Element, min, max int) Element {
	if min < 0 || (max != 0 && max < min) {
		panic(fmt.Sprintf("grammar: invalid repeat bounds [%d, %d]", min, max))
	}
	return &element{kind: kindRepeat, children: []Element{e}, min: min, max: max}
}

// ZeroOrMore is Repeat(e, 0, 0).
func ZeroOrMore(e Element) Element {
	return Repeat(e, 0, 0)
}

// OneOrMore is Repeat(e, 1, 0).
func OneOrMore(e Element) Element {
	return Repeat(e, 1, 0)
}

// Not succeeds without consuming when e fails at the current position.
func Not(e Element) Element {
	return &element{kind: kindNot, children: []Element{e}}
}
