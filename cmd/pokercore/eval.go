package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/orbitdash/pokercore/poker"
)

// EvalCmd ranks hole cards against a board, e.g.
//
//	pokercore eval "Ah Kh" "Qd Qc" --board "2h 7h 9h Jd 3c"
type EvalCmd struct {
	Hands []string `arg:"" help:"Hole cards per player, e.g. 'Ah Kh' or 'AhKh'"`
	Board string   `short:"b" required:"" help:"Board of 3 to 5 cards, e.g. '2h 7h 9h'"`
}

type evaluation struct {
	hole []poker.Card
	hand poker.EvaluatedHand
	win  bool
}

func (c *EvalCmd) Run() error {
	evals, board, err := evaluate(c.Hands, c.Board)
	if err != nil {
		return err
	}
	printEvaluations(os.Stdout, evals, board)
	return nil
}

func evaluate(hands []string, boardText string) ([]evaluation, []poker.Card, error) {
	board, err := poker.ParseCards(boardText)
	if err != nil {
		return nil, nil, fmt.Errorf("board: %w", err)
	}
	if len(board) < 3 || len(board) > 5 {
		return nil, nil, fmt.Errorf("board must have 3 to 5 cards, got %d", len(board))
	}
	if len(hands) == 0 {
		return nil, nil, errors.New("at least one hand is required")
	}

	seen := make(map[poker.Card]bool)
	for _, c := range board {
		seen[c] = true
	}
	evals := make([]evaluation, len(hands))
	for i, text := range hands {
		hole, err := poker.ParseCards(text)
		if err != nil {
			return nil, nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		if len(hole) != 2 {
			return nil, nil, fmt.Errorf("hand %d: need 2 hole cards, got %d", i+1, len(hole))
		}
		for _, c := range hole {
			if seen[c] {
				return nil, nil, fmt.Errorf("hand %d: card %s dealt twice", i+1, c)
			}
			seen[c] = true
		}
		h, err := poker.BestHand(hole, board)
		if err != nil {
			return nil, nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		evals[i] = evaluation{hole: hole, hand: h}
	}

	best := evals[0].hand
	for _, e := range evals[1:] {
		if poker.Compare(e.hand, best) > 0 {
			best = e.hand
		}
	}
	for i := range evals {
		evals[i].win = poker.Compare(evals[i].hand, best) == 0
	}
	return evals, board, nil
}

func printEvaluations(w io.Writer, evals []evaluation, board []poker.Card) {
	fmt.Fprintf(w, "%s %s\n\n", headerStyle.Render("Board"), poker.FormatCards(board))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, e := range evals {
		result := mutedStyle.Render("loses")
		if e.win {
			result = winStyle.Render("wins")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			labelStyle.Render(fmt.Sprintf("Player %d", i+1)),
			poker.FormatCards(e.hole), e.hand, poker.FormatCards(e.hand.Cards[:]), result)
	}
	_ = tw.Flush()
}
