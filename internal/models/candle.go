package models

import "time"

// Candle: закрытая свеча, время открытия в UTC.
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint локальный экстремум (уровень ликвидности).
type SwingPoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Kind  SwingKind `json:"kind"`
}

type ImbalanceDirection string

const (
	// ImbalanceBullish: гэп над ценой, ждём возврата вверх.
	ImbalanceBullish ImbalanceDirection = "BULLISH"
	// ImbalanceBearish: гэп под ценой, ждём возврата вниз.
	ImbalanceBearish ImbalanceDirection = "BEARISH"
)

// Imbalance: трёхсвечной гэп (FVG).
type Imbalance struct {
	OpenTime  time.Time          `json:"open_time"`
	CloseTime time.Time          `json:"close_time"`
	Upper     float64            `json:"upper"`
	Lower     float64            `json:"lower"`
	Direction ImbalanceDirection `json:"direction"`
}

func (im Imbalance) Mid() float64 { return (im.Upper + im.Lower) / 2 }

func (im Imbalance) Width() float64 { return im.Upper - im.Lower }

// Overlaps цена свечи зашла в границы гэпа.
func (im Imbalance) Overlaps(c Candle) bool {
	return c.Low <= im.Upper && c.High >= im.Lower
}

// ImbalanceFor направление гэпа, подходящее для сделки.
func ImbalanceFor(side Side) ImbalanceDirection {
	if side == SideSell {
		return ImbalanceBearish
	}
	return ImbalanceBullish
}

type MarketContext int

const (
	ContextNeutral MarketContext = iota
	ContextBullish
	ContextBearish
)

func (m MarketContext) String() string {
	switch m {
	case ContextBullish:
		return "BULLISH"
	case ContextBearish:
		return "BEARISH"
	default:
		return "NEUTRAL"
	}
}

func (m MarketContext) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// SweepEvent: свеча, прошедшая за ранее сформированный swing-уровень.
// Side направление сделки, которое подсказывает снятие ликвидности.
type SweepEvent struct {
	CandleTime time.Time  `json:"candle_time"`
	Candle     Candle     `json:"candle"`
	Level      SwingPoint `json:"level"`
	Side       Side       `json:"side"`
}
