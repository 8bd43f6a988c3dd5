package ftx

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type FillsQuery struct {
	Market    string
	OrderID   int64
	StartTime time.Time
	EndTime   time.Time
}

func (c *Client) GetAccountInfo(ctx context.Context) (AccountInfo, error) {
	var out AccountInfo
	err := c.get(ctx, "account", nil, &out)
	return out, err
}

func (c *Client) GetPositions(ctx context.Context, showAvgPrice bool) ([]Position, error) {
	params := url.Values{}
	params.Set("showAvgPrice", strconv.FormatBool(showAvgPrice))
	var out []Position
	if err := c.get(ctx, "positions", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPosition returns the first position on future name, or nil when the
// account holds none. A missing position is not an error.
func (c *Client) GetPosition(ctx context.Context, name string, showAvgPrice bool) (*Position, error) {
	positions, err := c.GetPositions(ctx, showAvgPrice)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		if positions[i].Future == name {
			pos := positions[i]
			return &pos, nil
		}
	}
	return nil, nil
}

func (c *Client) GetFills(ctx context.Context, q FillsQuery) ([]Fill, error) {
	if !q.StartTime.IsZero() && !q.EndTime.IsZero() && q.EndTime.Before(q.StartTime) {
		return nil, invalid("get_fills", "end before start")
	}
	params := url.Values{}
	if q.Market != "" {
		params.Set("market", q.Market)
	}
	if q.OrderID > 0 {
		params.Set("orderId", strconv.FormatInt(q.OrderID, 10))
	}
	setTime(params, "start_time", q.StartTime)
	setTime(params, "end_time", q.EndTime)

	var out []Fill
	if err := c.get(ctx, "fills", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBalances(ctx context.Context) ([]Balance, error) {
	var out []Balance
	if err := c.get(ctx, "wallet/balances", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDepositAddress(ctx context.Context, coin string) (DepositAddress, error) {
	var out DepositAddress
	if strings.TrimSpace(coin) == "" {
		return out, invalid("get_deposit_address", "coin is required")
	}
	err := c.get(ctx, "wallet/deposit_address/"+coin, nil, &out)
	return out, err
}
