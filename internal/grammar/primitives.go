// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"regexp"
)

// W matches one token whose text equals s exactly.
func W(s string) Element {
	return &element{kind: kindWord, word: s}
}

// I matches one token whose text equals s under Unicode case folding.
func I(s string) Element {
	return &element{kind: kindWord, word: s, fold: true}
}

// R matches one token whose text matches the pattern. The pattern is not
// anchored implicitly; callers write ^...$ when they mean the whole token.
// R panics if the pattern does not compile.
func R(pattern string) Element {
	return &element{kind: kindRegex, re: regexp.MustCompile(pattern)}
}

// T matches one token whose tag matches the pattern.
func T(pattern string) Element {
	return &element{kind: kindTag, re: regexp.MustCompile(pattern)}
}

// Any matches any single token.
func Any() Element {
	return &element{kind: kindAny}
}

// Func wraps an externally implemented matcher. labels declares the capture
// labels fn may emit so that build-time validation can see them.
func Func(name string, labels []string, fn MatchFunc) Element {
	return &element{
		kind:     kindFunc,
		name:     name,
		fn:       fn,
		fnLabels: append([]string(nil), labels...),
	}
}
