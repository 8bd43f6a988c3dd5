package core

import (
	"github.com/shopspring/decimal"
)

type Side string

type OrderType string

type ConditionalType string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

const (
	Limit  OrderType = "limit"
	Market OrderType = "market"
)

// Conditional order kinds as accepted from callers. The exchange spells
// them differently on the wire, see WireName.
const (
	Stop         ConditionalType = "stop"
	TakeProfit   ConditionalType = "take_profit"
	TrailingStop ConditionalType = "trailing_stop"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

func (t OrderType) Valid() bool {
	return t == Limit || t == Market
}

func (t ConditionalType) Valid() bool {
	switch t {
	case Stop, TakeProfit, TrailingStop:
		return true
	}
	return false
}

// NeedsTrigger reports whether the kind activates on a trigger price.
func (t ConditionalType) NeedsTrigger() bool {
	return t == Stop || t == TakeProfit
}

func (t ConditionalType) WireName() string {
	switch t {
	case TakeProfit:
		return "takeProfit"
	case TrailingStop:
		return "trailingStop"
	}
	return string(t)
}

// Order is the exchange-neutral shape used for precision checks before
// an order request is built.
type Order struct {
	Market string
	Side   Side
	Type   OrderType
	Price  decimal.Decimal
	Size   decimal.Decimal
}

type Rules struct {
	PriceTick decimal.Decimal
	SizeStep  decimal.Decimal
	MinSize   decimal.Decimal
}
