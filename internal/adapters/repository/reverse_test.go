package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reverseLines(t *testing.T, content string, block int) []string {
	t.Helper()
	r := newReverseLineReader(strings.NewReader(content), int64(len(content)), block)
	var out []string
	for {
		line, ok, err := r.next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

func TestReverseLineReader(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", []string{""}},
		{"single", "abc", []string{"abc"}},
		{"leading separator", "\na\nbb", []string{"bb", "a", ""}},
		{"trailing separator", "a\nbb\n", []string{"", "bb", "a"}},
		{"multibyte", "ü☕\nçé", []string{"çé", "ü☕"}},
	}
	for _, tc := range cases {
		for _, block := range []int{1, 2, 4, 1024} {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, reverseLines(t, tc.content, block))
			})
		}
	}
}
