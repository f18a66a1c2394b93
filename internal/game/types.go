package game

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

var streetNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if s < Preflop || s > Showdown {
		return "unknown"
	}
	return streetNames[s]
}

func (s Street) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Street) UnmarshalText(text []byte) error {
	for i, name := range streetNames {
		if name == string(text) {
			*s = Street(i)
			return nil
		}
	}
	return fmt.Errorf("unknown street %q", text)
}

// Status is the coarse table status exposed to clients.
type Status int

const (
	StatusWaiting Status = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = [...]string{"waiting", "in_progress", "completed"}

func (s Status) String() string {
	if s < StatusWaiting || s > StatusCompleted {
		return "unknown"
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Phase is the hand lifecycle state. posting_blinds and showdown are passed
// through inside a single transition; clients observe them only in history.
type Phase int

const (
	PhaseWaitingForPlayers Phase = iota
	PhasePostingBlinds
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhasePayout
)

var phaseNames = [...]string{
	"waiting_for_players", "posting_blinds", "preflop", "flop", "turn", "river", "showdown", "payout",
}

func (p Phase) String() string {
	if p < PhaseWaitingForPlayers || p > PhasePayout {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

func phaseForStreet(s Street) Phase {
	switch s {
	case Preflop:
		return PhasePreflop
	case Flop:
		return PhaseFlop
	case Turn:
		return PhaseTurn
	case River:
		return PhaseRiver
	default:
		return PhaseShowdown
	}
}

// GameType distinguishes practice tables (human vs AI) from multiplayer tables.
type GameType int

const (
	Practice GameType = iota
	Multiplayer
)

func (g GameType) String() string {
	if g == Multiplayer {
		return "multiplayer"
	}
	return "practice"
}

func (g GameType) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GameType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "practice":
		*g = Practice
	case "multiplayer":
		*g = Multiplayer
	default:
		return fmt.Errorf("unknown game type %q", text)
	}
	return nil
}

// Difficulty is the AI tier seated at a practice table.
type Difficulty string

const (
	Novice       Difficulty = "novice"
	Intermediate Difficulty = "intermediate"
	Expert       Difficulty = "expert"
)

// Difficulties lists the tiers from easiest to hardest.
var Difficulties = []Difficulty{Novice, Intermediate, Expert}

// ParseDifficulty accepts a tier name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Novice, Intermediate, Expert:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// ActionType represents a player action
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Raise
	AllIn
)

var actionNames = [...]string{"fold", "check", "call", "raise", "all_in"}

func (a ActionType) String() string {
	if a < Fold || a > AllIn {
		return "unknown"
	}
	return actionNames[a]
}

func (a ActionType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseActionType accepts the wire names plus a few common aliases.
func ParseActionType(s string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise", "bet":
		return Raise, nil
	case "all_in", "allin", "all-in":
		return AllIn, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is a single player decision. Amount is only read for Raise and is
// the total bet the seat raises to for this street.
type Action struct {
	Type   ActionType `json:"action"`
	Amount int        `json:"amount,omitempty"`
}

func (a Action) String() string {
	if a.Type == Raise {
		return fmt.Sprintf("raise to %d", a.Amount)
	}
	return a.Type.String()
}

// ActionRecord is one entry of the current hand's action log.
type ActionRecord struct {
	Seat   int        `json:"seat"`
	SeatID string     `json:"seatId"`
	Street Street     `json:"street"`
	Type   ActionType `json:"action"`
	// Amount is the chips moved by this action.
	Amount int `json:"amount"`
	// BetTo is the seat's street bet after the action.
	BetTo int `json:"betTo"`
	// Forced marks timeouts and leave folds.
	Forced bool `json:"forced,omitempty"`
}
