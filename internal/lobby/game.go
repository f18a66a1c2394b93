package lobby

import (
	"time"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/table"
)

// Game is one table owned by the lobby.
type Game struct {
	ID         string
	Type       game.GameType
	Difficulty game.Difficulty
	HostID     string
	HostName   string
	BuyIn      int
	MaxPlayers int
	CreatedAt  time.Time

	runner *table.Runner
}

// Runner exposes the table for subscriptions and actions.
func (g *Game) Runner() *table.Runner { return g.runner }

// Summary describes the table for the open games list.
func (g *Game) Summary() GameSummary {
	return GameSummary{
		GameID:         g.ID,
		HostName:       g.HostName,
		BuyIn:          g.BuyIn,
		CurrentPlayers: occupied(g.runner.Snapshot("")),
		MaxPlayers:     g.MaxPlayers,
	}
}

// humans counts seated non-AI players.
func humans(st *game.State) int {
	n := 0
	for _, s := range st.Seats {
		if s != nil && !s.IsAI {
			n++
		}
	}
	return n
}
