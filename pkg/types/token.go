// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Token is one unit of pre-tokenized input. Tag carries the part-of-speech
// or BIO entity tag assigned by the upstream tokenizer, if any.
type Token struct {
	Text string `json:"text" yaml:"text"`
	Tag  string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// tagSeparator splits the compact "text/TAG" scalar form. Only the last
// separator counts so that units like "g/mol" survive when untagged.
const tagSeparator = "/"

// ParseToken decodes the compact scalar form. A trailing "/TAG" is treated
// as a tag only when TAG has at least two characters and is upper case
// (e.g. "P3HT/B-CM", "the/DT").
func ParseToken(s string) Token {
	i := strings.LastIndex(s, tagSeparator)
	if i <= 0 || i >= len(s)-2 {
		return Token{Text: s}
	}
	tag := s[i+1:]
	if strings.ToUpper(tag) != tag || strings.ToLower(tag) == tag {
		return Token{Text: s}
	}
	return Token{Text: s[:i], Tag: tag}
}

// UnmarshalYAML accepts either a {text, tag} mapping or a scalar.
func (t *Token) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = ParseToken(node.Value)
		return nil
	}
	type plain Token
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("decoding token: %w", err)
	}
	*t = Token(p)
	return nil
}

// UnmarshalJSON accepts either a {"text", "tag"} object or a string.
func (t *Token) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseToken(s)
		return nil
	}
	type plain Token
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding token: %w", err)
	}
	*t = Token(p)
	return nil
}

// Tokens builds untagged tokens from raw strings.
func Tokens(texts ...string) []Token {
	out := make([]Token, len(texts))
	for i, s := range texts {
		out[i] = Token{Text: s}
	}
	return out
}

// JoinTokens renders tokens back to text separated by single spaces.
func JoinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
