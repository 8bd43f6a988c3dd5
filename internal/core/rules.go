package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrBelowMinSize  = errors.New("size below min")
	ErrMissingMarket = errors.New("market required")
)

// NormalizeOrder rounds price and size down to the market increments and
// rejects orders that end up below the minimum size.
func NormalizeOrder(order Order, rules Rules) (Order, error) {
	if order.Market == "" {
		return order, ErrMissingMarket
	}
	if order.Size.Cmp(decimal.Zero) <= 0 {
		return order, ErrInvalidOrder
	}
	if rules.SizeStep.Cmp(decimal.Zero) > 0 {
		order.Size = RoundDown(order.Size, rules.SizeStep)
	}
	if order.Size.Cmp(decimal.Zero) <= 0 {
		return order, ErrInvalidOrder
	}
	if rules.MinSize.Cmp(decimal.Zero) > 0 && order.Size.Cmp(rules.MinSize) < 0 {
		return order, ErrBelowMinSize
	}
	if order.Type == Market {
		return order, nil
	}
	if order.Price.Cmp(decimal.Zero) <= 0 {
		return order, ErrInvalidOrder
	}
	if rules.PriceTick.Cmp(decimal.Zero) > 0 {
		order.Price = RoundDown(order.Price, rules.PriceTick)
	}
	if order.Price.Cmp(decimal.Zero) <= 0 {
		return order, ErrInvalidOrder
	}
	return order, nil
}

// RoundDown floors value onto a multiple of step. FTX
// increments need not be powers of ten, e.g. a 0.5 price tick.
func RoundDown(value, step decimal.Decimal) decimal.Decimal {
	if step.Cmp(decimal.Zero) <= 0 {
		return value
	}
	return value.Div(step).Floor().Mul(step)
}
