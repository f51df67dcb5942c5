package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
		desc     string
	}{
		{"Reply to Alice", []string{"reply", "to", "alice"}, "lowercases words"},
		{"  spaced   out  ", []string{"spaced", "out"}, "collapses whitespace"},
		{"re-open ticket #42", []string{"re", "open", "ticket", "42"}, "punctuation splits"},
		{"", nil, "empty input"},
		{"!!!", nil, "no alphanumeric content"},
	}

	for _, tc := range testCases {
		got := Tokenize(tc.input)
		if tc.expected == nil {
			assert.Empty(t, got, tc.desc)
			continue
		}
		assert.Equal(t, tc.expected, got, tc.desc)
	}
}

func TestHeadlineIndexMatch(t *testing.T) {
	ix := NewHeadlineIndex()
	ix.Insert("s1", "Reply to Alice")
	ix.Insert("s2", "Replay the recording")
	ix.Insert("s3", "Open calendar")

	testCases := []struct {
		query    string
		expected []string
		desc     string
	}{
		{"reply", []string{"s1"}, "exact word"},
		{"rep", []string{"s1", "s2"}, "shared prefix matches both"},
		{"alice calendar", []string{"s1", "s3"}, "multi-token union"},
		{"zzz", nil, "no match"},
		{"", nil, "empty query matches nothing"},
	}

	for _, tc := range testCases {
		got := ix.Match(tc.query)
		assert.Len(t, got, len(tc.expected), tc.desc)
		for _, id := range tc.expected {
			assert.True(t, got[id], "%s: expected %s in match set", tc.desc, id)
		}
	}
}

func TestHeadlineIndexRemove(t *testing.T) {
	ix := NewHeadlineIndex()
	ix.Insert("s1", "Reply to Alice")
	ix.Insert("s2", "Reply to Bob")

	ix.Remove("s1", "Reply to Alice")

	got := ix.Match("reply")
	assert.Len(t, got, 1)
	assert.True(t, got["s2"], "remaining suggestion still indexed under the shared word")
	assert.Empty(t, ix.Match("alice"))

	// Removing a never-indexed suggestion is a no-op.
	ix.Remove("s9", "Reply now")
	assert.True(t, ix.Match("reply")["s2"])
}
