package handhistory

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/orbitdash/pokercore/internal/game"
)

// Encode writes the hand history in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return errors.New("handhistory: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatAction renders one action for PHH player number player (1-based).
// streetHigh is the largest bet on the street before the action; an all-in
// that exceeds it is a raise, anything else is a call.
func FormatAction(player int, t game.ActionType, betTo, streetHigh int) string {
	p := fmt.Sprintf("p%d", player)
	switch t {
	case game.Fold:
		return p + " f"
	case game.Check, game.Call:
		return p + " cc"
	case game.Raise:
		return fmt.Sprintf("%s cbr %d", p, betTo)
	case game.AllIn:
		if betTo > streetHigh {
			return fmt.Sprintf("%s cbr %d", p, betTo)
		}
		return p + " cc"
	default:
		return fmt.Sprintf("# %s %s %d", p, t, betTo)
	}
}
