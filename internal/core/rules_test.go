package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrderLimitRoundsPriceAndSize(t *testing.T) {
	order := Order{
		Market: "BTC-PERP",
		Side:   Buy,
		Type:   Limit,
		Price:  decimal.RequireFromString("100.037"),
		Size:   decimal.RequireFromString("0.123456"),
	}
	rules := Rules{
		MinSize:   decimal.RequireFromString("0.01"),
		PriceTick: decimal.RequireFromString("0.5"),
		SizeStep:  decimal.RequireFromString("0.001"),
	}

	got, err := NormalizeOrder(order, rules)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("100")), "price = %s", got.Price)
	assert.True(t, got.Size.Equal(decimal.RequireFromString("0.123")), "size = %s", got.Size)
}

func TestNormalizeOrderBelowMinSize(t *testing.T) {
	order := Order{
		Market: "BTC-PERP",
		Side:   Sell,
		Type:   Limit,
		Price:  decimal.RequireFromString("100"),
		Size:   decimal.RequireFromString("0.009"),
	}
	_, err := NormalizeOrder(order, Rules{MinSize: decimal.RequireFromString("0.01")})
	assert.ErrorIs(t, err, ErrBelowMinSize)
}

func TestNormalizeOrderMarketIgnoresPrice(t *testing.T) {
	order := Order{
		Market: "ETH/USD",
		Side:   Buy,
		Type:   Market,
		Size:   decimal.RequireFromString("1.25"),
	}
	got, err := NormalizeOrder(order, Rules{SizeStep: decimal.RequireFromString("0.1")})
	require.NoError(t, err)
	assert.True(t, got.Size.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, got.Price.IsZero())
}

func TestNormalizeOrderRejectsMissingMarketAndZeroSize(t *testing.T) {
	_, err := NormalizeOrder(Order{Size: decimal.NewFromInt(1)}, Rules{})
	assert.ErrorIs(t, err, ErrMissingMarket)

	_, err = NormalizeOrder(Order{Market: "BTC-PERP", Type: Limit, Price: decimal.NewFromInt(1)}, Rules{})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NormalizeOrder(Order{
		Market: "BTC-PERP",
		Type:   Limit,
		Price:  decimal.NewFromInt(1),
		Size:   decimal.RequireFromString("0.0004"),
	}, Rules{SizeStep: decimal.RequireFromString("0.001")})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestConditionalTypeWireName(t *testing.T) {
	assert.Equal(t, "stop", Stop.WireName())
	assert.Equal(t, "takeProfit", TakeProfit.WireName())
	assert.Equal(t, "trailingStop", TrailingStop.WireName())
	assert.True(t, Stop.NeedsTrigger())
	assert.True(t, TakeProfit.NeedsTrigger())
	assert.False(t, TrailingStop.NeedsTrigger())
	assert.False(t, ConditionalType("limit").Valid())
}

func TestRoundDownNonDecimalSteps(t *testing.T) {
	cases := []struct{ value, step, want string }{
		{"48123.7", "0.5", "48123.5"},
		{"0.01234", "0.0001", "0.0123"},
		{"7", "2.5", "5"},
		{"3.3", "0", "3.3"},
	}
	for _, tc := range cases {
		got := RoundDown(decimal.RequireFromString(tc.value), decimal.RequireFromString(tc.step))
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s/%s got %s", tc.value, tc.step, got)
	}
}
