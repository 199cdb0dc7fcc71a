package models

import "time"

type ExitReason string

const (
	ExitStop      ExitReason = "STOP"
	ExitTarget    ExitReason = "TARGET"
	ExitEndOfData ExitReason = "END_OF_DATA"
)

// Position единственная открытая позиция бэктеста.
type Position struct {
	ID        int       `json:"id" yaml:"id"`
	Asset     string    `json:"asset" yaml:"asset"`
	Side      Side      `json:"side" yaml:"side"`
	EntryTime time.Time `json:"entry_time" yaml:"entry_time"`
	Entry     float64   `json:"entry" yaml:"entry"`
	Stop      float64   `json:"stop" yaml:"stop"`
	Target    float64   `json:"target" yaml:"target"`
	Volume    float64   `json:"volume" yaml:"volume"`
}

// ClosedTrade: запись журнала сделок, только append.
type ClosedTrade struct {
	Position
	ExitTime     time.Time  `json:"exit_time" yaml:"exit_time"`
	Exit         float64    `json:"exit" yaml:"exit"`
	Reason       ExitReason `json:"reason" yaml:"reason"`
	ProfitPips   float64    `json:"profit_pips" yaml:"profit_pips"`
	Profit       float64    `json:"profit" yaml:"profit"`
	BalanceAfter float64    `json:"balance_after" yaml:"balance_after"`
}

// BacktestState принадлежит только циклу движка.
type BacktestState struct {
	Balance     float64       `json:"balance"`
	PeakBalance float64       `json:"peak_balance"`
	MaxDrawdown float64       `json:"max_drawdown"`
	Open        *Position     `json:"open,omitempty"`
	Trades      []ClosedTrade `json:"trades"`
}
