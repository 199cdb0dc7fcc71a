package models

import (
	"fmt"
	"strings"
	"time"
)

// Side как у раннера: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Sign +1 для BUY, -1 для SELL.
func (s Side) Sign() float64 {
	switch s {
	case SideBuy:
		return 1
	case SideSell:
		return -1
	default:
		return 0
	}
}

// Stage результат одного шага пайплайна сигнала.
type Stage struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func (s Stage) String() string {
	mark := "ok"
	if !s.Passed {
		mark = "fail"
	}
	return fmt.Sprintf("%s[%s]: %s", s.Name, mark, s.Detail)
}

// Narrative склеивает стадии в одну строку для логов и причин NONE.
func Narrative(stages []Stage) string {
	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "; ")
}

// SignalCandidate: теоретический сигнал до исполнения.
type SignalCandidate struct {
	Asset     string        `json:"asset"`
	Side      Side          `json:"side"`
	Entry     float64       `json:"entry"`
	Stop      float64       `json:"stop"`
	Target    float64       `json:"target"`
	RR        float64       `json:"rr"`
	Context   MarketContext `json:"context"`
	Sweep     SweepEvent    `json:"sweep"`
	Imbalance Imbalance     `json:"imbalance"`
	Rationale []Stage       `json:"rationale"`
	CreatedAt time.Time     `json:"created_at"`
}

func (c SignalCandidate) Reason() string { return Narrative(c.Rationale) }
