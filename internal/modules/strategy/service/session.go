package service

import "time"

// SessionFilter торговое окно по часам UTC, [OpenHour, CloseHour).
type SessionFilter struct {
	Enabled   bool
	OpenHour  int
	CloseHour int
}

// LondonSession 08:00-17:00 UTC без учёта перехода на летнее время.
func LondonSession() SessionFilter {
	return SessionFilter{Enabled: true, OpenHour: 8, CloseHour: 17}
}

func (f SessionFilter) Active(t time.Time) bool {
	if !f.Enabled {
		return true
	}
	h := t.UTC().Hour()
	return f.OpenHour <= h && h < f.CloseHour
}
