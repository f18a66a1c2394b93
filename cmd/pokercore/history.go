package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/orbitdash/pokercore/internal/handhistory"
)

// HistoryCmd is the root command for PHH utilities.
type HistoryCmd struct {
	Show HistoryShowCmd `cmd:"" help:"Print the hands in a session.phhs file"`
}

// HistoryShowCmd prints a readable summary of each recorded hand.
type HistoryShowCmd struct {
	File    string `arg:"" name:"file" help:"Path to session.phhs file"`
	Limit   int    `help:"Maximum number of hands to show (0 = all)"`
	Actions bool   `help:"Include the action log"`
}

func (c *HistoryShowCmd) Run() error {
	hands, err := handhistory.ReadSessionFile(c.File)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return fmt.Errorf("no hands found in %s", c.File)
	}
	if c.Limit > 0 && c.Limit < len(hands) {
		hands = hands[:c.Limit]
	}
	for _, h := range hands {
		printHand(os.Stdout, h, c.Actions)
	}
	return nil
}

func printHand(w io.Writer, h *handhistory.HandHistory, actions bool) {
	title := "Hand " + h.HandID
	if h.Time != "" {
		title += fmt.Sprintf(" (%04d-%02d-%02d %s)", h.Year, h.Month, h.Day, h.Time)
	}
	fmt.Fprintln(w, headerStyle.Render(title))
	board := "-"
	if len(h.Board) > 0 {
		board = strings.Join(h.Board, " ")
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Board"), board)
	if hand, ok := h.Metadata["winning_hand"].(string); ok && hand != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Winning hand"), hand)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, name := range h.Players {
		start, finish := at(h.StartingStacks, i), at(h.FinishingStacks, i)
		delta := finish - start
		fmt.Fprintf(tw, "  p%d\t%s\t%d\t→ %d\t%s\n", i+1, name, start, finish,
			signed(float64(delta), fmt.Sprintf("%+d", delta)))
	}
	_ = tw.Flush()

	if actions {
		for _, a := range h.Actions {
			fmt.Fprintln(w, mutedStyle.Render("  "+a))
		}
	}
	fmt.Fprintln(w)
}

func at(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
