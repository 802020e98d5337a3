// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPattern reports a malformed phrase pattern.
var ErrPattern = errors.New("malformed phrase pattern")

// Words matches a space-separated phrase one case-insensitive token at a
// time. Words("band gap") is Seq(I("band"), I("gap")).
func Words(phrase string) Element {
	fields := strings.Fields(phrase)
	switch len(fields) {
	case 0:
		panic("grammar: empty phrase")
	case 1:
		return I(fields[0])
	}
	elems := make([]Element, len(fields))
	for i, f := range fields {
		elems[i] = I(f)
	}
	return Seq(elems...)
}

// Phrase is CompilePhrase for patterns known to be valid. It panics on a
// malformed pattern.
func Phrase(pattern string) Element {
	e, err := CompilePhrase(pattern)
	if err != nil {
		panic("grammar: " + err.Error())
	}
	return e
}

// CompilePhrase compiles a compact phrase pattern into a case-insensitive
// token grammar. Words are separated by spaces, "a|b" is an alternation of
// single tokens, and "[...]" wraps an optional group that may span several
// words and nest. "enthalpy|heat of fusion|melting" accepts "heat of
// melting" and "Enthalpy of fusion"; "[optical] band gap [energy] [level]"
// accepts "band gap" and "optical band gap energy". Alternation applies to
// one token only.
func CompilePhrase(pattern string) (Element, error) {
	p := phraseParser{src: pattern}
	elems, err := p.sequence(0)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 0:
		return nil, fmt.Errorf("%w: empty pattern %q", ErrPattern, pattern)
	case 1:
		return elems[0], nil
	}
	return Seq(elems...), nil
}

type phraseParser struct {
	src string
	pos int
}

func (p *phraseParser) sequence(depth int) ([]Element, error) {
	var out []Element
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ':
			p.pos++
		case ']':
			if depth == 0 {
				return nil, fmt.Errorf("%w: unbalanced ']' in %q", ErrPattern, p.src)
			}
			return out, nil
		case '[':
			p.pos++
			inner, err := p.sequence(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("%w: unclosed '[' in %q", ErrPattern, p.src)
			}
			p.pos++
			switch len(inner) {
			case 0:
				return nil, fmt.Errorf("%w: empty group in %q", ErrPattern, p.src)
			case 1:
				out = append(out, Opt(inner[0]))
			default:
				out = append(out, Opt(Seq(inner...)))
			}
		default:
			e, err := p.word()
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *phraseParser) word() (Element, error) {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(" []", rune(p.src[p.pos])) {
		p.pos++
	}
	var elems []Element
	for _, a := range strings.Split(p.src[start:p.pos], "|") {
		if a == "" {
			return nil, fmt.Errorf("%w: empty alternative in %q", ErrPattern, p.src)
		}
		elems = append(elems, I(a))
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return Or(elems...), nil
}
