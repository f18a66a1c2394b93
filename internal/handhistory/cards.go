package handhistory

import (
	"strings"

	"github.com/orbitdash/pokercore/poker"
)

var rankMap = map[string]string{
	"a":  "A",
	"k":  "K",
	"q":  "Q",
	"j":  "J",
	"10": "T",
	"t":  "T",
	"9":  "9",
	"8":  "8",
	"7":  "7",
	"6":  "6",
	"5":  "5",
	"4":  "4",
	"3":  "3",
	"2":  "2",
}

// NormalizeCard converts wire notation (e.g. 10h) to PHH notation (Th).
func NormalizeCard(card string) string {
	card = strings.TrimSpace(card)
	if card == "" {
		return ""
	}
	lowered := strings.ToLower(card)
	if lowered == "??" || len(lowered) < 2 {
		return strings.ToUpper(lowered)
	}

	suit := lowered[len(lowered)-1:]
	rankPart := lowered[:len(lowered)-1]
	rank, ok := rankMap[rankPart]
	if !ok {
		rank = strings.ToUpper(rankPart[:1])
	}
	return rank + suit
}

// JoinCards renders cards back to back in PHH notation, e.g. "AhTd".
func JoinCards(cards []poker.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(NormalizeCard(c.String()))
	}
	return b.String()
}
