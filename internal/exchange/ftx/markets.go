package ftx

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Candle resolutions accepted by the exchange.
var candleResolutions = map[time.Duration]bool{
	15 * time.Second: true,
	time.Minute:      true,
	5 * time.Minute:  true,
	15 * time.Minute: true,
	time.Hour:        true,
	4 * time.Hour:    true,
	24 * time.Hour:   true,
}

// TradesQuery filters a single GET markets/{market}/trades call. Zero
// values are omitted from the query string.
type TradesQuery struct {
	Limit     int
	StartTime time.Time
	EndTime   time.Time
	// Order is "asc" or empty for the server default (newest first).
	Order string
}

func (q TradesQuery) values() url.Values {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	setTime(params, "start_time", q.StartTime)
	setTime(params, "end_time", q.EndTime)
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	return params
}

func (c *Client) ListFutures(ctx context.Context) ([]Future, error) {
	var out []Future
	if err := c.get(ctx, "futures", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFuture(ctx context.Context, name string) (Future, error) {
	var out Future
	if strings.TrimSpace(name) == "" {
		return out, invalid("get_future", "future name is required")
	}
	err := c.get(ctx, "futures/"+name, nil, &out)
	return out, err
}

func (c *Client) ListMarkets(ctx context.Context) ([]Market, error) {
	var out []Market
	if err := c.get(ctx, "markets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMarket(ctx context.Context, name string) (Market, error) {
	var out Market
	if strings.TrimSpace(name) == "" {
		return out, invalid("get_market", "market name is required")
	}
	err := c.get(ctx, "markets/"+name, nil, &out)
	return out, err
}

// GetOrderbook returns the book for market. depth is only sent when > 0.
func (c *Client) GetOrderbook(ctx context.Context, market string, depth int) (Orderbook, error) {
	var out Orderbook
	if strings.TrimSpace(market) == "" {
		return out, invalid("get_orderbook", "market is required")
	}
	if depth < 0 {
		return out, invalid("get_orderbook", "depth must be >= 0")
	}
	params := url.Values{}
	if depth > 0 {
		params.Set("depth", strconv.Itoa(depth))
	}
	err := c.get(ctx, "markets/"+market+"/orderbook", params, &out)
	return out, err
}

func (c *Client) GetTrades(ctx context.Context, market string, q TradesQuery) ([]Trade, error) {
	if strings.TrimSpace(market) == "" {
		return nil, invalid("get_trades", "market is required")
	}
	if q.Order != "" && q.Order != "asc" {
		return nil, invalid("get_trades", "order must be asc or empty, got %q", q.Order)
	}
	var out []Trade
	if err := c.get(ctx, "markets/"+market+"/trades", q.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHistoricalPrices returns OHLCV candles. resolution must be one of the
// exchange's fixed window lengths (15s, 1m, 5m, 15m, 1h, 4h, 1d).
func (c *Client) GetHistoricalPrices(ctx context.Context, market string, resolution time.Duration, start, end time.Time) ([]Candle, error) {
	if strings.TrimSpace(market) == "" {
		return nil, invalid("get_historical_prices", "market is required")
	}
	if !candleResolutions[resolution] {
		return nil, invalid("get_historical_prices", "unsupported resolution %s", resolution)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, invalid("get_historical_prices", "end before start")
	}
	params := url.Values{}
	params.Set("resolution", strconv.FormatInt(int64(resolution/time.Second), 10))
	setTime(params, "start_time", start)
	setTime(params, "end_time", end)

	var out []Candle
	if err := c.get(ctx, "markets/"+market+"/candles", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFundingRates lists funding payments for perpetual futures. An empty
// future returns rates for all perpetuals.
func (c *Client) GetFundingRates(ctx context.Context, future string, start, end time.Time) ([]FundingRate, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, invalid("get_funding_rates", "end before start")
	}
	params := url.Values{}
	if future != "" {
		params.Set("future", future)
	}
	setTime(params, "start_time", start)
	setTime(params, "end_time", end)

	var out []FundingRate
	if err := c.get(ctx, "funding_rates", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
