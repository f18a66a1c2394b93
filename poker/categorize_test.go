package poker

import (
	"testing"
)

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		card1    string
		card2    string
		expected HoleCardCategory
	}{
		{"Pocket Aces", "As", "Ah", CategoryPremium},
		{"Pocket Jacks", "Jh", "Jd", CategoryPremium},
		{"Ace King offsuit", "Ac", "Kh", CategoryPremium},
		{"Pocket Tens", "10c", "Th", CategoryStrong},
		{"Ace Queen offsuit", "Ac", "Qh", CategoryStrong},
		{"Ace Jack suited", "As", "Js", CategoryStrong},
		{"Pocket Nines", "9c", "9h", CategoryMedium},
		{"Pocket Sevens", "7h", "7c", CategoryMedium},
		{"King Queen suited", "Ks", "Qs", CategoryMedium},
		{"Queen Ten suited", "Qd", "10d", CategoryMedium},
		{"Pocket Sixes", "6c", "6h", CategoryWeak},
		{"Pocket Twos", "2c", "2h", CategoryWeak},
		{"Suited connectors 76s", "7h", "6h", CategoryWeak},
		{"Suited one-gapper 53s", "5d", "3d", CategoryWeak},
		{"Seven Two offsuit", "7c", "2h", CategoryTrash},
		{"Jack Four offsuit", "Jh", "4c", CategoryTrash},
		{"King Queen offsuit", "Kc", "Qh", CategoryTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := CategorizeHoleCards(MustParseCard(tt.card1), MustParseCard(tt.card2))
			if result != tt.expected {
				t.Errorf("CategorizeHoleCards(%s, %s) = %s, want %s",
					tt.card1, tt.card2, result, tt.expected)
			}
		})
	}
}

func TestCategorizeHoleCardsFromStrings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		cards    []string
		expected HoleCardCategory
	}{
		{"Premium AA", []string{"As", "Ah"}, CategoryPremium},
		{"Medium 88", []string{"8c", "8h"}, CategoryMedium},
		{"Trash 72o", []string{"7c", "2h"}, CategoryTrash},
		{"too many cards", []string{"As", "Ah", "Ac"}, CategoryUnknown},
		{"bad card format", []string{"XX", "YY"}, CategoryUnknown},
		{"same card twice", []string{"As", "As"}, CategoryUnknown},
	}

	for _, tt := range tests {
		if got := CategorizeHoleCardsFromStrings(tt.cards); got != tt.expected {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.expected)
		}
	}
}
