package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	rand "math/rand/v2"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/orbitdash/pokercore/cmd/pokercore/shared"
	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/randutil"
)

// SimulateCmd seats AI tiers at offline tables and reports each tier's win
// rate in big blinds per 100 hands.
type SimulateCmd struct {
	Hands   int      `kong:"default='2000',help='Hands per table'"`
	Tables  int      `kong:"default='4',help='Tables played in parallel'"`
	Players int      `kong:"default='6',help='Seats per table (2-6)'"`
	Tiers   []string `kong:"default='novice,intermediate,expert',help='AI tiers assigned to seats in rotation'"`
	BuyIn   int      `kong:"default='1000',help='Stack each seat starts and rebuys with'"`
	Seed    *int64   `kong:"help='Deterministic seed (optional)'"`
}

type simulation struct {
	hands      int
	tables     int
	seats      []game.Difficulty
	buyIn      int
	smallBlind int
	bigBlind   int
	seed       int64
}

// tierResult holds one net result in big blinds per seat per hand.
type tierResult struct {
	difficulty game.Difficulty
	nets       []float64
}

func (c *SimulateCmd) Run() error {
	sim, err := c.simulation()
	if err != nil {
		return err
	}
	logger := zerolog.New(io.Discard)
	ctx, stop := shared.SignalContext(context.Background(), logger)
	defer stop()

	start := time.Now()
	results, err := sim.run(ctx, logger)
	if err != nil {
		return err
	}
	printSimulation(os.Stdout, sim, results, time.Since(start))
	return nil
}

func (c *SimulateCmd) simulation() (simulation, error) {
	if c.Players < game.MinSeats || c.Players > game.MaxSeats {
		return simulation{}, fmt.Errorf("players must be between %d and %d", game.MinSeats, game.MaxSeats)
	}
	if c.Hands <= 0 || c.Tables <= 0 || c.BuyIn <= 0 {
		return simulation{}, errors.New("hands, tables and buy-in must be positive")
	}
	if len(c.Tiers) == 0 {
		return simulation{}, errors.New("at least one tier is required")
	}
	tiers := make([]game.Difficulty, 0, len(c.Tiers))
	for _, s := range c.Tiers {
		d, err := game.ParseDifficulty(s)
		if err != nil {
			return simulation{}, err
		}
		tiers = append(tiers, d)
	}
	seats := make([]game.Difficulty, c.Players)
	for i := range seats {
		seats[i] = tiers[i%len(tiers)]
	}
	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	return simulation{
		hands:      c.Hands,
		tables:     c.Tables,
		seats:      seats,
		buyIn:      c.BuyIn,
		smallBlind: 5,
		bigBlind:   10,
		seed:       seed,
	}, nil
}

// run plays every table concurrently and merges results per tier in seat
// rotation order.
func (s simulation) run(ctx context.Context, logger zerolog.Logger) ([]tierResult, error) {
	perTable := make([][][]float64, s.tables)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.tables; i++ {
		rng := randutil.New(s.seed + int64(i))
		g.Go(func() error {
			nets, err := s.playTable(ctx, fmt.Sprintf("sim-%d", i), rng, logger)
			perTable[i] = nets
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []tierResult
	index := map[game.Difficulty]int{}
	for seat, d := range s.seats {
		idx, ok := index[d]
		if !ok {
			idx = len(results)
			index[d] = idx
			results = append(results, tierResult{difficulty: d})
		}
		for _, nets := range perTable {
			results[idx].nets = append(results[idx].nets, nets[seat]...)
		}
	}
	return results, nil
}

// playTable returns each seat's net result per hand in big blinds. Busted
// seats rebuy before the next deal.
func (s simulation) playTable(ctx context.Context, id string, rng *rand.Rand, logger zerolog.Logger) ([][]float64, error) {
	st, err := game.NewState(id, game.TableConfig{
		Type:       game.Practice,
		MaxSeats:   len(s.seats),
		SmallBlind: s.smallBlind,
		BigBlind:   s.bigBlind,
		BuyIn:      s.buyIn,
	})
	if err != nil {
		return nil, err
	}
	policies := make(map[string]*ai.Policy, len(s.seats))
	for i, d := range s.seats {
		seatID := fmt.Sprintf("seat-%d", i)
		st, _, err = game.SeatPlayer(st, game.NewPlayer{ID: seatID, Name: seatID, IsAI: true, Difficulty: d, Stack: s.buyIn})
		if err != nil {
			return nil, err
		}
		policies[seatID] = ai.NewPolicy(d, ai.WithRNG(randutil.Derive(rng)), ai.WithLogger(logger))
	}

	nets := make([][]float64, len(s.seats))
	for hand := 0; hand < s.hands; hand++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, seat := range st.Seats {
			if seat.Stack == 0 {
				if st, err = game.Rebuy(st, seat.ID, s.buyIn); err != nil {
					return nil, err
				}
			}
		}
		before := make([]int, len(st.Seats))
		for i, seat := range st.Seats {
			before[i] = seat.Stack
		}

		if st, err = game.StartHand(st, game.WithRNG(rng)); err != nil {
			return nil, err
		}
		for st.Status == game.StatusInProgress {
			view, ok := st.DecisionView()
			if !ok {
				return nil, fmt.Errorf("%s hand %d: no seat to act", id, st.HandNumber)
			}
			next, err := game.ApplyAction(st, view.SeatID, policies[view.SeatID].Decide(view))
			if err != nil {
				// The policy only picks from legal actions; fall back to the
				// timeout default rather than stall the table.
				next, _, err = game.ForceAction(st, view.SeatID)
				if err != nil {
					return nil, err
				}
			}
			st = next
		}

		for i, seat := range st.Seats {
			nets[i] = append(nets[i], float64(seat.Stack-before[i])/float64(s.bigBlind))
		}
	}
	return nets, nil
}

type tierSummary struct {
	difficulty game.Difficulty
	hands      int
	bbPer100   float64
	ciLow      float64
	ciHigh     float64
}

// summarize reports bb/100 with a 95% Student's t confidence interval.
func summarize(r tierResult) tierSummary {
	n := len(r.nets)
	sum := tierSummary{difficulty: r.difficulty, hands: n}
	if n == 0 {
		return sum
	}
	mean, sd := stat.MeanStdDev(r.nets, nil)
	sum.bbPer100 = mean * 100
	sum.ciLow, sum.ciHigh = sum.bbPer100, sum.bbPer100
	if n > 1 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
		margin := t * sd / math.Sqrt(float64(n)) * 100
		sum.ciLow, sum.ciHigh = sum.bbPer100-margin, sum.bbPer100+margin
	}
	return sum
}

func printSimulation(w io.Writer, sim simulation, results []tierResult, elapsed time.Duration) {
	names := make([]string, len(sim.seats))
	for i, d := range sim.seats {
		names[i] = string(d)
	}
	fmt.Fprintln(w, headerStyle.Render("AI tier simulation"))
	fmt.Fprintf(w, "%s %d tables × %d hands, seats [%s], seed %d, %s\n\n",
		labelStyle.Render("Played"), sim.tables, sim.hands, strings.Join(names, " "), sim.seed,
		mutedStyle.Render(elapsed.Round(time.Millisecond).String()))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tSEAT HANDS\tBB/100\t95% CI")
	for _, r := range results {
		s := summarize(r)
		fmt.Fprintf(tw, "%s\t%d\t%s\t[%.1f, %.1f]\n",
			labelStyle.Render(string(s.difficulty)), s.hands,
			signed(s.bbPer100, fmt.Sprintf("%+.1f", s.bbPer100)), s.ciLow, s.ciHigh)
	}
	_ = tw.Flush()
}
