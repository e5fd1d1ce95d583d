package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSegments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "  \n\n \n\n", []string{}},
		{"single", "hello", []string{"hello"}},
		{"thread", "1/ first\n\n2/ second\n\n3/ third", []string{"1/ first", "2/ second", "3/ third"}},
		{"trims and drops empties", "\n\n  a  \n\n\n\n b\n\n", []string{"a", "b"}},
		{"single newline stays inside segment", "line one\nline two\n\nnext", []string{"line one\nline two", "next"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SplitSegments(tc.in))
		})
	}
}

func TestSplitJoinIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"one",
		"1/ a\n\n2/ b",
		"  lead \n\n\n\n\n trail  ",
		"a\n\n\nb\n\n \n\nc",
		"tweet with\nnewline\n\n  second  ",
	}
	for _, in := range inputs {
		first := SplitSegments(in)
		again := SplitSegments(JoinSegments(first))
		require.Equal(t, first, again, "input %q", in)
	}
}

func TestSegmentsByType(t *testing.T) {
	text := " first\n\nsecond "

	require.Equal(t, []string{"first", "second"}, Segments(Twitter, text))
	require.Equal(t, []string{"first\n\nsecond"}, Segments(LinkedIn, text))
	require.Equal(t, []string{}, Segments(Instagram, "   "))
}

func TestParseContentType(t *testing.T) {
	ct, ok := ParseContentType(" Twitter ")
	require.True(t, ok)
	require.Equal(t, Twitter, ct)

	_, ok = ParseContentType("tiktok")
	require.False(t, ok)
}
