package game

import (
	"fmt"
	"slices"

	"github.com/orbitdash/pokercore/poker"
)

// MinSeats and MaxSeats bound a table's capacity.
const (
	MinSeats = 2
	MaxSeats = 6
)

// Seat is one occupied position at the table.
type Seat struct {
	ID         string
	Name       string
	IsAI       bool
	Difficulty Difficulty
	Position   int

	Stack int
	// CurrentBet is committed on the current street and not yet in the pot.
	CurrentBet int
	// Committed is everything put in during the current hand, used for side pots.
	Committed int
	HoleCards []poker.Card

	InHand       bool
	Folded       bool
	AllIn        bool
	Acted        bool
	Busted       bool
	LeavePending bool

	// BoughtIn totals every buy-in and rebuy taken at this table.
	BoughtIn int
}

func (s *Seat) clone() *Seat {
	if s == nil {
		return nil
	}
	cp := *s
	cp.HoleCards = slices.Clone(s.HoleCards)
	return &cp
}

// canAct reports whether the seat still makes decisions this hand.
func (s *Seat) canAct() bool {
	return s != nil && s.InHand && !s.Folded && !s.AllIn
}

// live reports whether the seat still contests the pot.
func (s *Seat) live() bool {
	return s != nil && s.InHand && !s.Folded
}

// Funded reports whether the seat can be dealt into the next hand.
func (s *Seat) Funded() bool {
	return s != nil && s.Stack > 0 && !s.Busted && !s.LeavePending
}

// TableConfig holds the fixed parameters of a table.
type TableConfig struct {
	Type       GameType
	MaxSeats   int
	SmallBlind int
	BigBlind   int
	BuyIn      int
}

// Validate checks the table parameters.
func (c TableConfig) Validate() error {
	if c.MaxSeats < MinSeats || c.MaxSeats > MaxSeats {
		return fmt.Errorf("%w: max seats %d outside [%d,%d]", ErrInvalidConfig, c.MaxSeats, MinSeats, MaxSeats)
	}
	if c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind {
		return fmt.Errorf("%w: blinds %d/%d", ErrInvalidConfig, c.SmallBlind, c.BigBlind)
	}
	if c.BuyIn < c.BigBlind {
		return fmt.Errorf("%w: buy-in %d below big blind %d", ErrInvalidConfig, c.BuyIn, c.BigBlind)
	}
	return nil
}

// State is the authoritative record of one table. Every exported operation
// in this package treats a *State as immutable and returns a modified copy.
type State struct {
	ID     string
	Config TableConfig
	Status Status
	Phase  Phase

	// Seats has fixed length Config.MaxSeats; nil entries are empty.
	Seats  []*Seat
	Dealer int
	// Turn is the seat index to act, or -1 when nobody is to act.
	Turn   int
	Street Street

	Community []poker.Card
	Pot       int
	// MinRaise is the size of the last full raise on this street.
	MinRaise   int
	HandNumber int

	Actions []ActionRecord
	Result  *HandResult

	deck *poker.Deck
}

// NewState creates an empty table waiting for players.
func NewState(id string, cfg TableConfig) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &State{
		ID:     id,
		Config: cfg,
		Status: StatusWaiting,
		Phase:  PhaseWaitingForPlayers,
		Seats:  make([]*Seat, cfg.MaxSeats),
		Dealer: -1,
		Turn:   -1,
	}, nil
}

// Clone returns a deep copy.
func (st *State) Clone() *State {
	cp := *st
	cp.Seats = make([]*Seat, len(st.Seats))
	for i, s := range st.Seats {
		cp.Seats[i] = s.clone()
	}
	cp.Community = slices.Clone(st.Community)
	cp.Actions = slices.Clone(st.Actions)
	cp.Result = st.Result.clone()
	cp.deck = st.deck.Clone()
	return &cp
}

// SeatByID returns the seat index and seat for a player id.
func (st *State) SeatByID(id string) (int, *Seat) {
	for i, s := range st.Seats {
		if s != nil && s.ID == id {
			return i, s
		}
	}
	return -1, nil
}

// CurrentSeat returns the seat due to act, if any.
func (st *State) CurrentSeat() *Seat {
	if st.Turn < 0 || st.Turn >= len(st.Seats) {
		return nil
	}
	return st.Seats[st.Turn]
}

// HighestBet is the largest street bet at the table.
func (st *State) HighestBet() int {
	highest := 0
	for _, s := range st.Seats {
		if s != nil && s.CurrentBet > highest {
			highest = s.CurrentBet
		}
	}
	return highest
}

// ToCall is the amount the seat must add to match the highest bet.
func (st *State) ToCall(seat int) int {
	s := st.Seats[seat]
	if s == nil {
		return 0
	}
	return max(0, st.HighestBet()-s.CurrentBet)
}

// MinRaiseTo is the smallest legal raise-to total on this street.
func (st *State) MinRaiseTo() int {
	return st.HighestBet() + max(st.MinRaise, st.Config.BigBlind)
}

// TotalPot includes the pot plus uncollected street bets.
func (st *State) TotalPot() int {
	total := st.Pot
	for _, s := range st.Seats {
		if s != nil {
			total += s.CurrentBet
		}
	}
	return total
}

// PotOdds is call / (pot + call) for the seat, or 0 when nothing is owed.
func (st *State) PotOdds(seat int) float64 {
	call := min(st.ToCall(seat), st.Seats[seat].Stack)
	if call == 0 {
		return 0
	}
	return float64(call) / float64(st.TotalPot()+call)
}

// TotalChips sums stacks, street bets and the pot. Betting never changes it.
func (st *State) TotalChips() int {
	total := st.Pot
	for _, s := range st.Seats {
		if s != nil {
			total += s.Stack + s.CurrentBet
		}
	}
	return total
}

// OccupiedSeats counts non-empty seats.
func (st *State) OccupiedSeats() int {
	n := 0
	for _, s := range st.Seats {
		if s != nil {
			n++
		}
	}
	return n
}

// FundedSeats counts seats that can be dealt into the next hand.
func (st *State) FundedSeats() int {
	n := 0
	for _, s := range st.Seats {
		if s.Funded() {
			n++
		}
	}
	return n
}

// LiveSeats counts seats still contesting the current hand.
func (st *State) LiveSeats() int {
	n := 0
	for _, s := range st.Seats {
		if s.live() {
			n++
		}
	}
	return n
}

func (st *State) actingSeats() int {
	n := 0
	for _, s := range st.Seats {
		if s.canAct() {
			n++
		}
	}
	return n
}

// nextSeat walks clockwise from (but excluding) from and returns the first
// index matching pred, or -1.
func (st *State) nextSeat(from int, pred func(*Seat) bool) int {
	n := len(st.Seats)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if pred(st.Seats[idx]) {
			return idx
		}
	}
	return -1
}

// LegalAction describes one action available to the seat to act. For Raise,
// Min and Max bound the raise-to amount; for Call and AllIn they give the
// chips that would move.
type LegalAction struct {
	Type ActionType `json:"action"`
	Min  int        `json:"min,omitempty"`
	Max  int        `json:"max,omitempty"`
}

// LegalActions lists what the seat to act may do. It is empty when nobody
// is to act.
func (st *State) LegalActions() []LegalAction {
	s := st.CurrentSeat()
	if st.Status != StatusInProgress || !s.canAct() {
		return nil
	}
	toCall := st.ToCall(st.Turn)
	actions := []LegalAction{{Type: Fold}}
	if toCall == 0 {
		actions = append(actions, LegalAction{Type: Check})
	} else {
		call := min(toCall, s.Stack)
		actions = append(actions, LegalAction{Type: Call, Min: call, Max: call})
	}
	maxTo := s.Stack + s.CurrentBet
	if minTo := st.MinRaiseTo(); maxTo >= minTo && st.othersCanRespond() {
		actions = append(actions, LegalAction{Type: Raise, Min: minTo, Max: maxTo})
	}
	actions = append(actions, LegalAction{Type: AllIn, Min: s.Stack, Max: s.Stack})
	return actions
}

// othersCanRespond reports whether anyone besides the acting seat could
// still put chips in, which is what makes a raise meaningful.
func (st *State) othersCanRespond() bool {
	for i, s := range st.Seats {
		if i != st.Turn && s.canAct() {
			return true
		}
	}
	return false
}

// IsLegal reports whether the action type appears in LegalActions.
func (st *State) IsLegal(t ActionType) bool {
	for _, la := range st.LegalActions() {
		if la.Type == t {
			return true
		}
	}
	return false
}
