package game

// ApplyAction validates and applies one action by seatID. The input state is
// never modified: on success a new state is returned, on failure the error is
// an *IllegalActionError and the caller keeps its original state.
func ApplyAction(st *State, seatID string, action Action) (*State, error) {
	if st.Status != StatusInProgress {
		return nil, illegal(seatID, action.Type, "no hand in progress")
	}
	cur := st.CurrentSeat()
	if cur == nil || cur.ID != seatID {
		return nil, illegal(seatID, action.Type, "not your turn")
	}
	if err := validateAction(st, action); err != nil {
		return nil, err
	}

	next := st.Clone()
	next.apply(next.Turn, action, false)
	next.afterAction()
	return next, nil
}

// ForceAction applies the default action for the seat to act: check when
// legal, fold otherwise. Timeouts and pending leaves use it.
func ForceAction(st *State, seatID string) (*State, Action, error) {
	action := Action{Type: Fold}
	if st.Status == StatusInProgress && st.Turn >= 0 && st.ToCall(st.Turn) == 0 {
		if s := st.CurrentSeat(); s != nil && !s.LeavePending {
			action = Action{Type: Check}
		}
	}
	if st.Status != StatusInProgress {
		return nil, action, illegal(seatID, action.Type, "no hand in progress")
	}
	cur := st.CurrentSeat()
	if cur == nil || cur.ID != seatID {
		return nil, action, illegal(seatID, action.Type, "not your turn")
	}
	next := st.Clone()
	next.apply(next.Turn, action, true)
	next.afterAction()
	return next, action, nil
}

func validateAction(st *State, action Action) error {
	s := st.CurrentSeat()
	toCall := st.ToCall(st.Turn)

	switch action.Type {
	case Fold:
		return nil
	case Check:
		if toCall > 0 {
			return illegal(s.ID, action.Type, "cannot check, %d to call", toCall)
		}
	case Call:
		if toCall == 0 {
			return illegal(s.ID, action.Type, "nothing to call, check instead")
		}
	case Raise:
		minTo := st.MinRaiseTo()
		maxTo := s.Stack + s.CurrentBet
		switch {
		case !st.othersCanRespond():
			return illegal(s.ID, action.Type, "no opponent can call a raise")
		case action.Amount > maxTo:
			return illegal(s.ID, action.Type, "raise to %d exceeds stack, maximum %d", action.Amount, maxTo)
		case action.Amount < minTo:
			return illegal(s.ID, action.Type, "raise to %d below minimum %d", action.Amount, minTo)
		}
	case AllIn:
		if s.Stack == 0 {
			return illegal(s.ID, action.Type, "no chips left")
		}
	default:
		return illegal(s.ID, action.Type, "unknown action")
	}
	return nil
}

// apply mutates the receiver, which must be a private clone.
func (st *State) apply(idx int, action Action, forced bool) {
	s := st.Seats[idx]
	highest := st.HighestBet()
	rec := ActionRecord{Seat: idx, SeatID: s.ID, Street: st.Street, Type: action.Type, Forced: forced}

	switch action.Type {
	case Fold:
		s.Folded = true
	case Check:
	case Call:
		rec.Amount = st.commit(s, min(highest-s.CurrentBet, s.Stack))
	case Raise:
		rec.Amount = st.commit(s, action.Amount-s.CurrentBet)
	case AllIn:
		rec.Amount = st.commit(s, s.Stack)
	}
	s.Acted = true
	rec.BetTo = s.CurrentBet

	if s.CurrentBet > highest {
		// Full raises set the new minimum; a short all-in re-opens action
		// without changing it.
		if raise := s.CurrentBet - highest; raise >= st.MinRaise {
			st.MinRaise = raise
		}
		for i, other := range st.Seats {
			if i != idx && other != nil {
				other.Acted = false
			}
		}
	}
	st.Actions = append(st.Actions, rec)
}

func (st *State) commit(s *Seat, amount int) int {
	amount = min(amount, s.Stack)
	s.Stack -= amount
	s.CurrentBet += amount
	s.Committed += amount
	if s.Stack == 0 {
		s.AllIn = true
	}
	return amount
}

// afterAction ends the hand, closes the betting round or passes the turn.
func (st *State) afterAction() {
	if st.LiveSeats() == 1 {
		st.collectBets()
		st.awardUncontested()
		return
	}
	if st.roundComplete() {
		st.closeRound()
		return
	}
	st.Turn = st.nextToAct(st.Turn)
}

// needsToAct reports whether the seat owes a decision on this street.
func (st *State) needsToAct(s *Seat, highest int) bool {
	return s.canAct() && (!s.Acted || s.CurrentBet < highest)
}

func (st *State) nextToAct(from int) int {
	highest := st.HighestBet()
	return st.nextSeat(from, func(s *Seat) bool { return st.needsToAct(s, highest) })
}

// roundComplete reports whether every seat that can still act has acted since
// the last raise and matched the highest bet. A lone seat with chips behind
// all-in opponents only needs to match.
func (st *State) roundComplete() bool {
	highest := st.HighestBet()
	acting := 0
	for _, s := range st.Seats {
		if !s.canAct() {
			continue
		}
		acting++
		if s.CurrentBet < highest {
			return false
		}
	}
	if acting <= 1 {
		return true
	}
	for _, s := range st.Seats {
		if s.canAct() && !s.Acted {
			return false
		}
	}
	return true
}

// collectBets moves street bets into the pot.
func (st *State) collectBets() {
	for _, s := range st.Seats {
		if s == nil {
			continue
		}
		st.Pot += s.CurrentBet
		s.CurrentBet = 0
	}
}
