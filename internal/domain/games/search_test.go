package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"plain terms", "alpha beta", []string{"alpha", "beta"}},
		{"quoted phrase", `"half life" mod`, []string{"half life", "mod"}},
		{"unpaired quote skipped", `foo "bar baz`, []string{"foo", "bar", "baz"}},
		{"extra whitespace", "  alpha   beta  ", []string{"alpha", "beta"}},
		{"empty", "", nil},
		{"only quotes", `""`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query))
		})
	}
}
