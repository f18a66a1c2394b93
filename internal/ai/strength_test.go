package ai

import (
	"math"
	"testing"

	"github.com/orbitdash/pokercore/poker"
)

func TestPreflopStrength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hole string
		want float64
	}{
		{"As Ah", 0.9},
		{"2c 2d", 0.3 + 0.4 + 2.0/14*0.2},
		{"As Ks", 0.3 + 14.0/14*0.2 + 13.0/14*0.1 + 0.1 + 4*0.02},
		{"7c 2d", 0.3 + 7.0/14*0.2 + 2.0/14*0.1},
		{"Jh 10h", 0.3 + 11.0/14*0.2 + 10.0/14*0.1 + 0.1 + 4*0.02},
	}
	for _, tt := range tests {
		got := PreflopStrength(poker.MustParseCards(tt.hole))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: got %.4f, want %.4f", tt.hole, got, tt.want)
		}
	}
	if PreflopStrength(poker.MustParseCards("As")) != 0 {
		t.Error("a single card should score zero")
	}
}

func TestHandStrengthUsesCategoryAfterFlop(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hole, board string
		want        float64
	}{
		{"2c 7d", "Kh Qs 9d", 0.1},
		{"Kc 7d", "Kh Qs 9d", 0.3},
		{"Kc Qd", "Kh Qs 9d", 0.5},
		{"9c 9s", "Kh Qs 9d", 0.6},
		{"Jc 10d", "Kh Qs 9d", 0.7},
		{"Ah 2h", "Kh Qh 9h", 0.75},
		{"Kc Kd", "Kh Qs Qd", 0.85},
		{"Qc Qh", "Kh Qs Qd", 0.93},
		{"Jh 10h", "Kh Qh 9h", 0.98},
		{"Ah 10h", "Kh Qh Jh", 1.0},
	}
	for _, tt := range tests {
		got := HandStrength(poker.MustParseCards(tt.hole), poker.MustParseCards(tt.board))
		if got != tt.want {
			t.Errorf("%s on %s: got %.2f, want %.2f", tt.hole, tt.board, got, tt.want)
		}
	}
}

func TestBoardTexture(t *testing.T) {
	t.Parallel()
	tests := []struct {
		board string
		want  Texture
	}{
		{"Kh 7s 2d", Texture{}},
		{"Kh Ks 2d", Texture{Paired: true}},
		{"Kh 7h 2h", Texture{Monotone: true}},
		{"9h 8s 7d", Texture{Connected: true}},
		{"Ah 2s 4d", Texture{Connected: true}},
		{"Kh 9s 5d 2c", Texture{}},
	}
	for _, tt := range tests {
		if got := BoardTexture(poker.MustParseCards(tt.board)); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.board, got, tt.want)
		}
	}
}

func TestPositionStrength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rel, players int
		want         float64
	}{
		{6, 6, 0.9},
		{5, 6, 0.9},
		{4, 6, 0.6},
		{3, 6, 0.3},
		{1, 6, 0.3},
		{2, 2, 0.9},
		{1, 2, 0.9},
		{1, 3, 0.3},
		{3, 3, 0.9},
	}
	for _, tt := range tests {
		if got := PositionStrength(tt.rel, tt.players); got != tt.want {
			t.Errorf("position %d of %d: got %.1f, want %.1f", tt.rel, tt.players, got, tt.want)
		}
	}
}
