package service

import (
	"testing"
	"time"

	"sweep_bot/internal/models"
)

func TestRewardRisk(t *testing.T) {
	cases := []struct {
		name                string
		entry, stop, target float64
		side                models.Side
		want                float64
	}{
		{name: "buy 2R", entry: 100, stop: 99, target: 102, side: models.SideBuy, want: 2},
		{name: "sell 3R", entry: 100, stop: 101, target: 97, side: models.SideSell, want: 3},
		{name: "zero risk", entry: 100, stop: 100, target: 102, side: models.SideBuy, want: 0},
		{name: "stop on wrong side", entry: 100, stop: 101, target: 102, side: models.SideBuy, want: 0},
		{name: "no side", entry: 100, stop: 99, target: 102, side: models.SideNone, want: 0},
	}
	for _, tc := range cases {
		if got := RewardRisk(tc.entry, tc.stop, tc.target, tc.side); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestLevelsValid(t *testing.T) {
	if !LevelsValid(models.SideBuy, 100, 99, 101) || !LevelsValid(models.SideSell, 100, 101, 99) {
		t.Fatalf("valid levels rejected")
	}
	if LevelsValid(models.SideBuy, 100, 101, 102) || LevelsValid(models.SideSell, 100, 101, 100) {
		t.Fatalf("inverted levels accepted")
	}
}

func TestSessionFilter(t *testing.T) {
	f := LondonSession()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if f.Active(day.Add(7*time.Hour + 59*time.Minute)) {
		t.Fatalf("07:59 is before the open")
	}
	if !f.Active(day.Add(8 * time.Hour)) {
		t.Fatalf("08:00 is inside")
	}
	if f.Active(day.Add(17 * time.Hour)) {
		t.Fatalf("17:00 is after the close")
	}
	if !(SessionFilter{}).Active(day) {
		t.Fatalf("disabled filter always passes")
	}
}
