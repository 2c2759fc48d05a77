package modeladapter_test

import (
	"strings"
	"testing"

	"github.com/germanamz/aix/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"Hello!", 2},
		{strings.Repeat("x", 2048*4), 2048},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, modeladapter.EstimateTokens(tt.text), "text length %d", len(tt.text))
	}
}
