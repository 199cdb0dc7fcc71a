package helper

import (
	"testing"
	"time"
)

func TestTFDuration(t *testing.T) {
	cases := []struct {
		tf      string
		minutes map[string]int
		want    time.Duration
		wantErr bool
	}{
		{tf: "15m", want: 15 * time.Minute},
		{tf: "H1", want: time.Hour},
		{tf: "4h", want: 4 * time.Hour},
		{tf: "1d", want: 24 * time.Hour},
		{tf: "m15", minutes: map[string]int{"15m": 15}, want: 15 * time.Minute},
		{tf: "1h", minutes: map[string]int{"1h": 0}, wantErr: true},
		{tf: "x", wantErr: true},
		{tf: "-5m", wantErr: true},
	}
	for _, tc := range cases {
		got, err := TFDuration(tc.tf, tc.minutes)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.tf, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.tf, got, tc.want)
		}
	}
}

func TestPipSize(t *testing.T) {
	if PipSize("USDJPY=X") != 0.01 {
		t.Fatalf("jpy pip")
	}
	if PipSize("EURUSD=X") != 0.0001 {
		t.Fatalf("default pip")
	}
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("13:30")
	if err != nil || d != 13*time.Hour+30*time.Minute {
		t.Fatalf("got %v %v", d, err)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAssetFileKey(t *testing.T) {
	if got := AssetFileKey("eur/usd=x"); got != "EUR_USD_X" {
		t.Fatalf("got %s", got)
	}
}
