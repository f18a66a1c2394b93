package game

import (
	"slices"

	"github.com/orbitdash/pokercore/poker"
)

// SeatSnapshot is the client view of one seat.
type SeatSnapshot struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	IsAI       bool         `json:"isAI"`
	Difficulty Difficulty   `json:"difficulty,omitempty"`
	Position   int          `json:"position"`
	Stack      int          `json:"stack"`
	CurrentBet int          `json:"currentBet"`
	Committed  int          `json:"committed"`
	HoleCards  []poker.Card `json:"holeCards,omitempty"`
	// CardCount is the number of hole cards held, visible even when masked.
	CardCount    int  `json:"cardCount"`
	InHand       bool `json:"inHand"`
	Folded       bool `json:"folded"`
	AllIn        bool `json:"allIn"`
	Busted       bool `json:"busted"`
	LeavePending bool `json:"leavePending,omitempty"`
}

// Snapshot is an immutable copy of table state taken after a committed
// transition. Derived values are computed at capture time and never stored
// on State.
type Snapshot struct {
	GameID     string   `json:"gameId"`
	Type       GameType `json:"type"`
	Status     Status   `json:"status"`
	Phase      Phase    `json:"phase"`
	Street     Street   `json:"street"`
	HandNumber int      `json:"handNumber"`
	Dealer     int      `json:"dealer"`
	Turn       int      `json:"turn"`
	TurnSeatID string   `json:"turnSeatId,omitempty"`
	// Seats has one entry per position; nil marks an empty seat.
	Seats      []*SeatSnapshot `json:"seats"`
	Community  []poker.Card    `json:"community"`
	Pot        int             `json:"pot"`
	SmallBlind int             `json:"smallBlind"`
	BigBlind   int             `json:"bigBlind"`
	BuyIn      int             `json:"buyIn"`
	HighestBet int             `json:"highestBet"`
	MinRaiseTo int             `json:"minRaiseTo"`
	Legal      []LegalAction   `json:"legalActions,omitempty"`
	Result     *HandResult     `json:"result,omitempty"`
}

// Snapshot captures the full state including every hole card. Use ViewFor
// before handing it to a player.
func (st *State) Snapshot() Snapshot {
	snap := Snapshot{
		GameID:     st.ID,
		Type:       st.Config.Type,
		Status:     st.Status,
		Phase:      st.Phase,
		Street:     st.Street,
		HandNumber: st.HandNumber,
		Dealer:     st.Dealer,
		Turn:       st.Turn,
		Seats:      make([]*SeatSnapshot, len(st.Seats)),
		Community:  slices.Clone(st.Community),
		Pot:        st.Pot,
		SmallBlind: st.Config.SmallBlind,
		BigBlind:   st.Config.BigBlind,
		BuyIn:      st.Config.BuyIn,
		HighestBet: st.HighestBet(),
		MinRaiseTo: st.MinRaiseTo(),
		Legal:      st.LegalActions(),
		Result:     st.Result.clone(),
	}
	if s := st.CurrentSeat(); s != nil && st.Status == StatusInProgress {
		snap.TurnSeatID = s.ID
	}
	for i, s := range st.Seats {
		if s == nil {
			continue
		}
		snap.Seats[i] = &SeatSnapshot{
			ID:           s.ID,
			Name:         s.Name,
			IsAI:         s.IsAI,
			Difficulty:   s.Difficulty,
			Position:     i,
			Stack:        s.Stack,
			CurrentBet:   s.CurrentBet,
			Committed:    s.Committed,
			HoleCards:    slices.Clone(s.HoleCards),
			CardCount:    len(s.HoleCards),
			InHand:       s.InHand,
			Folded:       s.Folded,
			AllIn:        s.AllIn,
			Busted:       s.Busted,
			LeavePending: s.LeavePending,
		}
	}
	return snap
}

// ViewFor returns a copy with hole cards hidden from viewerID. A viewer sees
// their own cards, and after a showdown everyone sees the hands that reached
// it. Pass an empty id for spectators.
func (s Snapshot) ViewFor(viewerID string) Snapshot {
	view := s
	view.Seats = make([]*SeatSnapshot, len(s.Seats))
	revealed := s.Result != nil && s.Result.Showdown
	for i, seat := range s.Seats {
		if seat == nil {
			continue
		}
		cp := *seat
		show := seat.ID == viewerID || (revealed && seat.InHand && !seat.Folded)
		if show {
			cp.HoleCards = slices.Clone(seat.HoleCards)
		} else {
			cp.HoleCards = nil
		}
		view.Seats[i] = &cp
	}
	if s.TurnSeatID != viewerID {
		view.Legal = nil
	}
	return view
}

// Seat returns the seat snapshot for an id.
func (s Snapshot) Seat(id string) *SeatSnapshot {
	for _, seat := range s.Seats {
		if seat != nil && seat.ID == id {
			return seat
		}
	}
	return nil
}

// DecisionView is what a bot sees when it is asked to act.
type DecisionView struct {
	SeatID     string
	Position   int
	HoleCards  []poker.Card
	Community  []poker.Card
	Street     Street
	Stack      int
	CurrentBet int
	ToCall     int
	Pot        int
	PotOdds    float64
	BigBlind   int
	MinRaiseTo int
	// Players counts seats dealt into the hand; LivePlayers those not folded.
	Players     int
	LivePlayers int
	// RelativePosition runs from 1 for the seat left of the dealer up to
	// Players for the dealer, who acts last after the flop.
	RelativePosition int
	Legal            []LegalAction
}

// DecisionView projects the state for the seat to act. ok is false when no
// seat is due to act.
func (st *State) DecisionView() (DecisionView, bool) {
	s := st.CurrentSeat()
	if st.Status != StatusInProgress || !s.canAct() {
		return DecisionView{}, false
	}
	view := DecisionView{
		SeatID:     s.ID,
		Position:   st.Turn,
		HoleCards:  slices.Clone(s.HoleCards),
		Community:  slices.Clone(st.Community),
		Street:     st.Street,
		Stack:      s.Stack,
		CurrentBet: s.CurrentBet,
		ToCall:     min(st.ToCall(st.Turn), s.Stack),
		Pot:        st.TotalPot(),
		PotOdds:    st.PotOdds(st.Turn),
		BigBlind:   st.Config.BigBlind,
		MinRaiseTo: st.MinRaiseTo(),
		Legal:      st.LegalActions(),
	}
	view.LivePlayers = st.LiveSeats()
	for i, seat := range st.inHandFrom(st.Dealer + 1) {
		view.Players++
		if seat == s {
			view.RelativePosition = i + 1
		}
	}
	return view, true
}

// LegalFor reports whether t is among the view's legal actions and returns it.
func (v DecisionView) LegalFor(t ActionType) (LegalAction, bool) {
	for _, la := range v.Legal {
		if la.Type == t {
			return la, true
		}
	}
	return LegalAction{}, false
}
