package service

import (
	"sync/atomic"
	"time"
)

// State состояние сканера для health-эндпоинтов.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastPollUnix   atomic.Int64 // unix seconds
	lastSignalUnix atomic.Int64
	signals        atomic.Int64
	pollErrors     atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchPoll(t time.Time) { s.lastPollUnix.Store(t.Unix()) }
func (s *State) LastPoll() time.Time   { return fromUnix(s.lastPollUnix.Load()) }

func (s *State) TouchSignal(t time.Time) {
	s.lastSignalUnix.Store(t.Unix())
	s.signals.Add(1)
}
func (s *State) LastSignal() time.Time { return fromUnix(s.lastSignalUnix.Load()) }
func (s *State) Signals() int64        { return s.signals.Load() }

func (s *State) AddPollError()     { s.pollErrors.Add(1) }
func (s *State) PollErrors() int64 { return s.pollErrors.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func fromUnix(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
