package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdash/pokercore/poker"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()
	evals, board, err := evaluate([]string{"Ah Kh", "QdQc", "10s 10c"}, "2h 7h 9h Jd 3c")
	require.NoError(t, err)
	assert.Len(t, board, 5)
	require.Len(t, evals, 3)
	assert.Equal(t, poker.Flush, evals[0].hand.Category)
	assert.True(t, evals[0].win)
	assert.False(t, evals[1].win)
	assert.Equal(t, poker.Pair, evals[2].hand.Category)

	var out bytes.Buffer
	printEvaluations(&out, evals, board)
	assert.Contains(t, out.String(), "Flush, Ace high")
}

func TestEvaluateSplit(t *testing.T) {
	t.Parallel()
	evals, _, err := evaluate([]string{"2c 3d", "4c 5d"}, "As Ks Qs Js 10s")
	require.NoError(t, err)
	assert.True(t, evals[0].win)
	assert.True(t, evals[1].win)
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		hands []string
		board string
	}{
		{"short board", []string{"Ah Kh"}, "2h 7h"},
		{"three hole cards", []string{"Ah Kh Qh"}, "2h 7h 9h"},
		{"duplicate card", []string{"Ah Kh", "Ah Qd"}, "2h 7h 9h"},
		{"board reuses hole card", []string{"2h Kh"}, "2h 7h 9h"},
		{"bad card", []string{"Zz Kh"}, "2h 7h 9h"},
		{"no hands", nil, "2h 7h 9h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := evaluate(tt.hands, tt.board)
			assert.Error(t, err)
		})
	}
}
