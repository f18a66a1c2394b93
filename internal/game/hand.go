package game

import (
	"fmt"

	"github.com/orbitdash/pokercore/poker"
)

// StartHand rotates the button, shuffles a fresh deck, deals hole cards and
// posts blinds. Busted AI seats are removed first; busted humans stay seated
// but are skipped until they rebuy.
func StartHand(st *State, opts ...HandOption) (*State, error) {
	if st.Status == StatusInProgress {
		return nil, ErrHandInProgress
	}
	cfg := handConfig{button: -1}
	for _, opt := range opts {
		opt(&cfg)
	}

	next := st.Clone()
	for i, s := range next.Seats {
		if s != nil && s.IsAI && s.Busted {
			next.Seats[i] = nil
		}
	}
	if next.FundedSeats() < MinSeats {
		return nil, fmt.Errorf("%w: %d funded", ErrNotEnoughPlayers, next.FundedSeats())
	}

	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(cfg.rng)
	}
	next.deck = deck

	next.HandNumber++
	next.Status = StatusInProgress
	next.Phase = PhasePostingBlinds
	next.Street = Preflop
	next.Community = nil
	next.Pot = 0
	next.MinRaise = next.Config.BigBlind
	next.Actions = nil
	next.Result = nil

	for _, s := range next.Seats {
		if s == nil {
			continue
		}
		s.CurrentBet = 0
		s.Committed = 0
		s.HoleCards = nil
		s.Folded = false
		s.AllIn = false
		s.Acted = false
		s.InHand = s.Funded()
	}

	switch {
	case cfg.button >= 0 && cfg.button < len(next.Seats) && next.Seats[cfg.button].Funded():
		next.Dealer = cfg.button
	default:
		next.Dealer = next.nextSeat(next.Dealer, (*Seat).Funded)
	}

	for _, s := range next.inHandFrom(next.Dealer + 1) {
		cards, err := next.deck.Deal(2)
		if err != nil {
			return nil, fmt.Errorf("deal hole cards: %w", err)
		}
		s.HoleCards = cards
	}

	sb, bb := next.blindSeats()
	next.postBlind(sb, next.Config.SmallBlind)
	next.postBlind(bb, next.Config.BigBlind)
	next.Phase = PhasePreflop

	if next.roundComplete() {
		next.closeRound()
	} else {
		next.Turn = next.nextToAct(bb)
	}
	return next, nil
}

// blindSeats returns the small and big blind positions. Heads-up the dealer
// posts the small blind.
func (st *State) blindSeats() (int, int) {
	inHand := func(s *Seat) bool { return s != nil && s.InHand }
	players := 0
	for _, s := range st.Seats {
		if inHand(s) {
			players++
		}
	}
	if players == 2 {
		return st.Dealer, st.nextSeat(st.Dealer, inHand)
	}
	sb := st.nextSeat(st.Dealer, inHand)
	return sb, st.nextSeat(sb, inHand)
}

// BlindSeats returns the small and big blind positions of the current or
// last hand.
func (st *State) BlindSeats() (sb, bb int) {
	return st.blindSeats()
}

func (st *State) postBlind(idx, amount int) {
	s := st.Seats[idx]
	st.commit(s, amount)
}

// inHandFrom returns seats dealt into the hand in clockwise order starting at
// the given index.
func (st *State) inHandFrom(start int) []*Seat {
	n := len(st.Seats)
	out := make([]*Seat, 0, n)
	for i := 0; i < n; i++ {
		s := st.Seats[((start+i)%n+n)%n]
		if s != nil && s.InHand {
			out = append(out, s)
		}
	}
	return out
}

// closeRound collects bets and moves to the next street. When fewer than two
// seats can still act the remaining board is dealt out and the hand goes to
// showdown.
func (st *State) closeRound() {
	st.collectBets()
	for _, s := range st.Seats {
		if s != nil {
			s.Acted = false
		}
	}
	st.MinRaise = st.Config.BigBlind

	for {
		if st.Street == River {
			st.showdown()
			return
		}
		st.dealStreet()
		if st.actingSeats() >= 2 {
			st.Turn = st.nextToAct(st.Dealer)
			return
		}
	}
}

func (st *State) dealStreet() {
	n := 1
	if st.Street == Preflop {
		n = 3
	}
	cards, err := st.deck.Deal(n)
	if err != nil {
		// A fresh deck always covers a six-handed deal.
		panic(fmt.Sprintf("deal %s: %v", st.Street+1, err))
	}
	st.Community = append(st.Community, cards...)
	st.Street++
	st.Phase = phaseForStreet(st.Street)
}

// DeckRemaining reports how many undealt cards are left.
func (st *State) DeckRemaining() int {
	if st.deck == nil {
		return 0
	}
	return st.deck.Remaining()
}

func (st *State) showdown() {
	st.Street = Showdown
	st.Phase = PhaseShowdown
	st.Turn = -1

	hands := make(map[int]poker.EvaluatedHand)
	for i, s := range st.Seats {
		if !s.live() {
			continue
		}
		h, err := poker.BestHand(s.HoleCards, st.Community)
		if err != nil {
			panic(fmt.Sprintf("evaluate seat %d: %v", i, err))
		}
		hands[i] = h
	}

	result := &HandResult{HandNumber: st.HandNumber, Showdown: true, FinalPot: st.Pot}
	for _, pot := range BuildPots(st.Seats) {
		result.Pots = append(result.Pots, st.awardPot(pot, hands))
	}
	st.finish(result, hands)
}

// awardPot splits one pot between the best eligible hands. Odd chips go to
// winners in clockwise order from the dealer.
func (st *State) awardPot(pot Pot, hands map[int]poker.EvaluatedHand) PotResult {
	var winners []int
	var best poker.EvaluatedHand
	for _, idx := range st.clockwiseFromDealer(pot.Eligible) {
		h := hands[idx]
		switch {
		case len(winners) == 0 || poker.Compare(h, best) > 0:
			winners = []int{idx}
			best = h
		case poker.Compare(h, best) == 0:
			winners = append(winners, idx)
		}
	}

	share, odd := pot.Amount/len(winners), pot.Amount%len(winners)
	pr := PotResult{Amount: pot.Amount, Hand: best.String()}
	for _, idx := range pot.Eligible {
		pr.Eligible = append(pr.Eligible, st.Seats[idx].ID)
	}
	for i, idx := range winners {
		amount := share
		if i < odd {
			amount++
		}
		st.Seats[idx].Stack += amount
		st.Pot -= amount
		pr.Winners = append(pr.Winners, Award{SeatID: st.Seats[idx].ID, Name: st.Seats[idx].Name, Amount: amount, Hand: hands[idx].String()})
	}
	return pr
}

func (st *State) clockwiseFromDealer(seats []int) []int {
	n := len(st.Seats)
	out := make([]int, 0, len(seats))
	for i := 1; i <= n; i++ {
		idx := (st.Dealer + i) % n
		for _, s := range seats {
			if s == idx {
				out = append(out, idx)
			}
		}
	}
	return out
}

// awardUncontested gives the whole pot to the last live seat.
func (st *State) awardUncontested() {
	idx := st.nextSeat(-1, (*Seat).live)
	s := st.Seats[idx]
	amount := st.Pot
	s.Stack += amount
	st.Pot = 0

	award := Award{SeatID: s.ID, Name: s.Name, Amount: amount}
	result := &HandResult{
		HandNumber: st.HandNumber,
		FinalPot:   amount,
		Pots:       []PotResult{{Amount: amount, Eligible: []string{s.ID}, Winners: []Award{award}}},
	}
	st.Turn = -1
	st.finish(result, nil)
}

// finish records the result, marks busted seats and completes the hand.
func (st *State) finish(result *HandResult, hands map[int]poker.EvaluatedHand) {
	totals := make(map[string]int)
	var order []string
	for _, pot := range result.Pots {
		for _, w := range pot.Winners {
			if _, ok := totals[w.SeatID]; !ok {
				order = append(order, w.SeatID)
			}
			totals[w.SeatID] += w.Amount
		}
	}
	for _, id := range order {
		idx, s := st.SeatByID(id)
		a := Award{SeatID: id, Name: s.Name, Amount: totals[id]}
		if h, ok := hands[idx]; ok {
			a.Hand = h.String()
		}
		result.Winners = append(result.Winners, a)
	}
	if hands != nil && len(result.Pots) > 0 && len(result.Pots[0].Winners) > 0 {
		idx, _ := st.SeatByID(result.Pots[0].Winners[0].SeatID)
		h := hands[idx]
		result.WinningHand = h.String()
		result.WinningCategory = h.Category
		result.WinningCards = h.Cards[:]
	}

	for _, s := range st.Seats {
		if s == nil {
			continue
		}
		s.Acted = false
		if s.Stack == 0 {
			s.Busted = true
		}
	}
	st.Result = result
	st.Status = StatusCompleted
	st.Phase = PhasePayout
	st.Turn = -1
}
