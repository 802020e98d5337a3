// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/property-engine/pkg/types"
)

func toks(texts ...string) []types.Token {
	return types.Tokens(texts...)
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name  string
		elem  Element
		input []types.Token
		want  bool
	}{
		{"W exact", W("Mn"), toks("Mn"), true},
		{"W is case sensitive", W("Mn"), toks("MN"), false},
		{"I folds case", I("bandgap"), toks("BandGap"), true},
		{"I folds greek", I("δh"), toks("ΔH"), true},
		{"R matches text", R(`^\d+(\.\d+)?$`), toks("12.3"), true},
		{"R rejects text", R(`^\d+$`), toks("12a"), false},
		{"T matches tag", T(`^B-CM$`), []types.Token{{Text: "P3HT", Tag: "B-CM"}}, true},
		{"T ignores text", T(`^B-CM$`), []types.Token{{Text: "B-CM"}}, false},
		{"Any matches", Any(), toks("x"), true},
		{"end of input", Any(), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := tc.elem.Match(tc.input, 0)
			assert.Equal(t, tc.want, ok)
			if ok {
				assert.Equal(t, 1, r.End)
				require.Len(t, r.Nodes, 1)
				assert.Equal(t, tc.input[0].Text, r.Nodes[0].Text)
			}
		})
	}
}

func TestOrCommitsToFirstAlternative(t *testing.T) {
	input := toks("is", "equal", "to", "5")
	short := Words("is")
	long := Words("is equal to")

	r, ok := Or(short, long).Match(input, 0)
	require.True(t, ok)
	assert.Equal(t, 1, r.End, "first alternative wins even when shorter")

	r, ok = Or(long, short).Match(input, 0)
	require.True(t, ok)
	assert.Equal(t, 3, r.End)

	_, ok = Or().Match(input, 0)
	assert.False(t, ok)
}

func TestSeqFailsAtomically(t *testing.T) {
	r, ok := Seq(W("a"), W("b")).Match(toks("a", "c"), 0)
	assert.False(t, ok)
	assert.Zero(t, r.End)

	r, ok = Seq().Match(toks("a"), 0)
	assert.True(t, ok)
	assert.Zero(t, r.End)
}

func TestOptNeverFails(t *testing.T) {
	for _, input := range [][]types.Token{nil, toks("x"), toks("y", "x")} {
		r, ok := Opt(W("x")).Match(input, 0)
		assert.True(t, ok)
		if len(input) > 0 && input[0].Text == "x" {
			assert.Equal(t, 1, r.End)
		} else {
			assert.Zero(t, r.End)
		}
	}
}

func TestRepeat(t *testing.T) {
	input := toks("a", "a", "a", "b")

	r, ok := OneOrMore(W("a")).Match(input, 0)
	require.True(t, ok)
	assert.Equal(t, 3, r.End)
	assert.Len(t, r.Nodes, 3)

	r, ok = Repeat(W("a"), 1, 2).Match(input, 0)
	require.True(t, ok)
	assert.Equal(t, 2, r.End)

	_, ok = Repeat(W("a"), 4, 0).Match(input, 0)
	assert.False(t, ok)

	_, ok = OneOrMore(W("b")).Match(input, 0)
	assert.False(t, ok)

	r, ok = ZeroOrMore(W("b")).Match(input, 0)
	assert.True(t, ok)
	assert.Zero(t, r.End)
}

func TestRepeatStopsOnZeroWidthMatch(t *testing.T) {
	r, ok := ZeroOrMore(Opt(W("x"))).Match(toks("y"), 0)
	assert.True(t, ok)
	assert.Zero(t, r.End)
}

func TestRepeatInvalidBoundsPanics(t *testing.T) {
	assert.Panics(t, func() { Repeat(W("a"), 3, 2) })
	assert.Panics(t, func() { Repeat(W("a"), -1, 0) })
}

func TestNotIsZeroWidth(t *testing.T) {
	input := toks("a", "b")

	r, ok := Not(W("b")).Match(input, 0)
	require.True(t, ok)
	assert.Zero(t, r.End)
	assert.Empty(t, r.Nodes)

	_, ok = Not(W("a")).Match(input, 0)
	assert.False(t, ok)

	r, ok = OneOrMore(Seq(Not(W("b")), Any())).Match(input, 0)
	require.True(t, ok)
	assert.Equal(t, 1, r.End)
}

func TestLabelingAndHiding(t *testing.T) {
	num := R(`^\d+(\.\d+)?$`).Named("value")
	units := W("eV").Named("units")
	g := Seq(W("(").Hide(), num, W(")").Hide(), units).Named("measurement")

	r, ok := g.Match(toks("(", "1.5", ")", "eV"), 0)
	require.True(t, ok)
	require.Len(t, r.Nodes, 1)

	m := r.Nodes[0]
	assert.Equal(t, "measurement", m.Label)
	assert.Equal(t, 0, m.Start)
	assert.Equal(t, 4, m.End)
	assert.Equal(t, []string{"measurement", "value", "units"}, Labels(r.Nodes))
	assert.Equal(t, []string{"value", "units"}, Labels(m.Children))
	assert.Equal(t, []string{"measurement", "value", "units"}, g.Labels())
}

func TestHiddenSubtreeEmitsNothing(t *testing.T) {
	g := Seq(W("a").Named("inner"), W("b")).Named("outer").Hide()
	r, ok := g.Match(toks("a", "b"), 0)
	require.True(t, ok)
	assert.Equal(t, 2, r.End)
	assert.Empty(t, r.Nodes)
	assert.Empty(t, g.Labels())
}

func TestUnlabeledCompositeFlattens(t *testing.T) {
	g := Seq(W("a").Named("x"), Seq(W("b").Named("y"), W("c")))
	r, ok := g.Match(toks("a", "b", "c"), 0)
	require.True(t, ok)
	require.Len(t, r.Nodes, 3)
	assert.Equal(t, "x", r.Nodes[0].Label)
	assert.Equal(t, "y", r.Nodes[1].Label)
	assert.Equal(t, "", r.Nodes[2].Label)
}

func TestModifiersReturnCopies(t *testing.T) {
	base := W("eV")
	named := base.Named("units")
	hidden := named.Hide()

	r, _ := base.Match(toks("eV"), 0)
	assert.Equal(t, "", r.Nodes[0].Label)

	r, _ = named.Match(toks("eV"), 0)
	assert.Equal(t, "units", r.Nodes[0].Label)

	r, _ = hidden.Match(toks("eV"), 0)
	assert.Empty(t, r.Nodes)

	assert.Equal(t, []string{"units"}, named.Labels())
	assert.Empty(t, base.Labels())
}

func TestMergeNormalizesRanges(t *testing.T) {
	num := R(`^\d+(\.\d+)?$`)
	spaced := Seq(num, R(`^[\-–−~]$`), num).Named("value").WithAction(Merge)
	joined := R(`^\d+(\.\d+)?[\-–−~]\d+(\.\d+)?$`).Named("value").WithAction(Merge)

	r, ok := spaced.Match(toks("10", "-", "20"), 0)
	require.True(t, ok)
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "value", r.Nodes[0].Label)
	assert.Equal(t, "10-20", r.Nodes[0].Text)
	assert.Empty(t, r.Nodes[0].Children)
	assert.Equal(t, 0, r.Nodes[0].Start)
	assert.Equal(t, 3, r.Nodes[0].End)

	r, ok = joined.Match(toks("10-20"), 0)
	require.True(t, ok)
	assert.Equal(t, "10-20", r.Nodes[0].Text)
}

func TestMergeIsIdempotent(t *testing.T) {
	g := Seq(W("g"), W("/"), W("mol")).Named("units")
	r, ok := g.Match(toks("g", "/", "mol"), 0)
	require.True(t, ok)

	once := Merge(nil, 0, r.Nodes)
	twice := Merge(nil, 0, once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "g/mol", once[0].Text)
}

func TestJoinKeepsSpaces(t *testing.T) {
	g := Seq(W("10"), I("to"), W("20")).Named("value").WithAction(Join)
	r, ok := g.Match(toks("10", "TO", "20"), 0)
	require.True(t, ok)
	assert.Equal(t, "10 TO 20", r.Nodes[0].Text)
}

func TestActionsDoNotMutateInput(t *testing.T) {
	in := []*Node{{Label: "x", Text: "a  , b"}}
	out := FixWhitespace(nil, 0, in)
	assert.Equal(t, "a  , b", in[0].Text)
	assert.Equal(t, "a, b", out[0].Text)
}

func TestFixWhitespace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"poly ( 3 - hexylthiophene )", "poly (3-hexylthiophene)"},
		{"a , b", "a, b"},
		{"2 – 3", "2–3"},
		{"  spaced   out ", "spaced out"},
		{"", ""},
	}
	for _, tc := range tests {
		out := FixWhitespace(nil, 0, []*Node{{Text: tc.in}})
		assert.Equal(t, tc.want, out[0].Text, tc.in)
	}
}

func TestNodeQueries(t *testing.T) {
	tree := &Node{Label: "phrase", Children: []*Node{
		{Label: "cem", Children: []*Node{
			{Label: "name", Text: "P3HT"},
		}},
		{Label: "measurement", Children: []*Node{
			{Label: "value", Text: "1.9"},
			{Label: "units", Text: ""},
		}},
		{Label: "measurement", Children: []*Node{
			{Label: "value", Text: "2.1"},
		}},
	}}

	v := tree.First("value")
	require.NotNil(t, v)
	assert.Equal(t, "1.9", v.Text)
	assert.Nil(t, tree.First("specifier"))

	text, ok := tree.Lookup("units")
	assert.True(t, ok, "present but empty")
	assert.Equal(t, "", text)

	_, ok = tree.Lookup("specifier")
	assert.False(t, ok, "absent")

	assert.Len(t, tree.All("measurement"), 2)
	assert.Equal(t, []string{"1.9", "2.1"}, Texts([]*Node{tree}, "value"))
	assert.Equal(t, []string{"phrase", "cem", "name", "measurement", "value", "units"}, Labels([]*Node{tree}))
	assert.Equal(t, "P3HT 1.9 2.1", tree.FlatText(" "))
}

func TestScanIsNonOverlapping(t *testing.T) {
	g := Seq(W("a"), W("a")).Named("pair")
	ms := Scan(g, toks("a", "a", "a", "b", "a", "a"))
	require.Len(t, ms, 2)
	assert.Equal(t, 0, ms[0].Start)
	assert.Equal(t, 2, ms[0].End)
	assert.Equal(t, 4, ms[1].Start)
	assert.Equal(t, 6, ms[1].End)
}

func TestScanSkipsEmptyMatches(t *testing.T) {
	ms := Scan(Opt(W("x")), toks("a", "x", "b"))
	require.Len(t, ms, 1)
	assert.Equal(t, 1, ms[0].Start)

	assert.Empty(t, Scan(W("x"), nil))
}

func TestParseIsAnchored(t *testing.T) {
	_, ok := Parse(W("b"), toks("a", "b"))
	assert.False(t, ok)

	m, ok := Parse(W("a"), toks("a", "b"))
	require.True(t, ok)
	assert.Equal(t, 1, m.End)
}

func TestPhrase(t *testing.T) {
	g := Phrase("[optical] band gap [energy] [level]")
	for _, s := range [][]string{
		{"band", "gap"},
		{"Optical", "band", "gap"},
		{"band", "gap", "energy", "level"},
	} {
		r, ok := g.Match(toks(s...), 0)
		assert.True(t, ok, s)
		assert.Equal(t, len(s), r.End, s)
	}
	_, ok := g.Match(toks("optical", "gap"), 0)
	assert.False(t, ok)

	alt := Phrase("enthalpy|heat of fusion|melting")
	r, ok := alt.Match(toks("Heat", "of", "melting"), 0)
	require.True(t, ok)
	assert.Equal(t, 3, r.End)

	nested := Phrase("[relative] [degree [of]] crystallinity")
	r, ok = nested.Match(toks("degree", "crystallinity"), 0)
	require.True(t, ok)
	assert.Equal(t, 2, r.End)
	_, ok = nested.Match(toks("of", "crystallinity"), 0)
	assert.False(t, ok)
}

func TestPhraseRejectsMalformedPatterns(t *testing.T) {
	assert.Panics(t, func() { Phrase("[band gap") })
	assert.Panics(t, func() { Phrase("band] gap") })
	assert.Panics(t, func() { Phrase("   ") })
	assert.Panics(t, func() { Words("") })

	for _, p := range []string{"a [] b", "a||b", "[[a]", "]"} {
		_, err := CompilePhrase(p)
		assert.ErrorIs(t, err, ErrPattern, p)
	}
}

func TestFuncElement(t *testing.T) {
	upper := Func("upper", []string{"name"}, func(tokens []types.Token, pos int) (Result, bool) {
		if pos < len(tokens) && tokens[pos].Text == "P3HT" {
			return Result{End: pos + 1, Nodes: []*Node{{Label: "name", Text: "P3HT", Start: pos, End: pos + 1}}}, true
		}
		return Result{}, false
	})
	g := upper.Named("cem")
	assert.Equal(t, []string{"cem", "name"}, g.Labels())

	r, ok := g.Match(toks("P3HT"), 0)
	require.True(t, ok)
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "cem", r.Nodes[0].Label)
	assert.Equal(t, "P3HT", r.Nodes[0].First("name").Text)
}

func TestString(t *testing.T) {
	g := Seq(I("Mn"), Opt(W("=")).Hide()).Named("x")
	assert.Equal(t, `Seq(I("Mn"), Opt(W("=")).Hide())("x")`, g.String())
}
