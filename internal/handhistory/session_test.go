package handhistory

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSessionOrdersSections(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), defaultFilename)

	var hands []*HandHistory
	for i := 1; i <= 12; i++ {
		h, err := FromState(showdownHand(t), handTime, true)
		require.NoError(t, err)
		h.HandID = fmt.Sprintf("hand-%d", i)
		hands = append(hands, h)
	}
	n, err := appendHands(path, 0, hands)
	require.NoError(t, err)
	require.Equal(t, 12, n)

	got, err := ReadSessionFile(path)
	require.NoError(t, err)
	require.Len(t, got, 12)
	for i, h := range got {
		assert.Equal(t, fmt.Sprintf("hand-%d", i+1), h.HandID)
	}
	assert.Equal(t, []string{"2c", "7d", "9h", "Ts", "3c"}, got[0].Board)
	assert.Equal(t, []string{"Bob", "Cara", "Alice"}, got[0].Players)
	assert.Equal(t, "Pair of Aces", got[0].Metadata["winning_hand"])
}

func TestReadSessionRejectsUnnumberedSections(t *testing.T) {
	t.Parallel()
	_, err := ReadSession(strings.NewReader("[intro]\nvariant = \"NT\"\n"))
	assert.ErrorContains(t, err, "not a hand number")
}
