package handhistory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ReadSession decodes a session.phhs stream into hands ordered by section
// number.
func ReadSession(r io.Reader) ([]*HandHistory, error) {
	sections := make(map[string]*HandHistory)
	if _, err := toml.NewDecoder(r).Decode(&sections); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	type numbered struct {
		n    int
		hand *HandHistory
	}
	hands := make([]numbered, 0, len(sections))
	for key, hand := range sections {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode session: section %q is not a hand number", key)
		}
		hand.Board = boardFromActions(hand.Actions)
		hands = append(hands, numbered{n, hand})
	}
	sort.Slice(hands, func(i, j int) bool { return hands[i].n < hands[j].n })

	out := make([]*HandHistory, len(hands))
	for i, h := range hands {
		out[i] = h.hand
	}
	return out, nil
}

// ReadSessionFile is ReadSession for a file on disk.
func ReadSessionFile(path string) ([]*HandHistory, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSession(f)
}

// boardFromActions rebuilds the board from "d db" lines.
func boardFromActions(actions []string) []string {
	var board []string
	for _, a := range actions {
		cards, ok := strings.CutPrefix(a, "d db ")
		if !ok {
			continue
		}
		for i := 0; i+2 <= len(cards); i += 2 {
			board = append(board, cards[i:i+2])
		}
	}
	return board
}
