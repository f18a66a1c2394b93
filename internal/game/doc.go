// Package game implements the authoritative Texas Hold'em table state.
//
// The aggregate root is State. Every operation (StartHand, ApplyAction,
// ForceAction, SeatPlayer, RemoveSeat, MarkLeaving, Rebuy) is a pure
// transition: it clones the input, applies the change and returns the new
// state, or returns an error and leaves the caller's state untouched. That
// makes a failed action transactional for free and lets callers publish a
// state as an immutable snapshot once it is committed.
//
// # Basic Usage
//
//	st, _ := game.NewState("g1", game.TableConfig{
//	    Type: game.Multiplayer, MaxSeats: 6, SmallBlind: 5, BigBlind: 10, BuyIn: 1000,
//	})
//	st, _, _ = game.SeatPlayer(st, game.NewPlayer{ID: "alice", Name: "Alice", Stack: 1000})
//	st, _, _ = game.SeatPlayer(st, game.NewPlayer{ID: "bob", Name: "Bob", Stack: 1000})
//	st, _ = game.StartHand(st, game.WithRNG(randutil.New(42)))
//	st, err := game.ApplyAction(st, st.CurrentSeat().ID, game.Action{Type: game.Call})
//
// # Chips
//
// Street bets live in Seat.CurrentBet until the betting round closes, then
// move into State.Pot. Stacks plus street bets plus the pot are constant
// across every action. Side pots are derived from each seat's Committed
// total by BuildPots at showdown; they are never stored.
//
// # Deterministic Testing
//
// StartHand accepts WithRNG for reproducible shuffles, WithDeck for a
// prepared deck (see poker.NewOrderedDeck) and WithButton to pin the dealer.
package game
