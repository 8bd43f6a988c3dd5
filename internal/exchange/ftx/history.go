package ftx

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const tradesPageLimit = 100

// TradeHistoryQuery bounds GetAllTrades. A zero EndTime starts from the
// newest trade.
type TradeHistoryQuery struct {
	StartTime time.Time
	EndTime   time.Time
	Order     string
}

type tradePageFunc func(ctx context.Context, end time.Time) ([]Trade, error)

// GetAllTrades walks market's trade history backwards from q.EndTime, one
// page of 100 at a time, and returns every trade exactly once.
func (c *Client) GetAllTrades(ctx context.Context, market string, q TradeHistoryQuery) ([]Trade, error) {
	if strings.TrimSpace(market) == "" {
		return nil, invalid("get_all_trades", "market is required")
	}
	if !q.StartTime.IsZero() && !q.EndTime.IsZero() && q.EndTime.Before(q.StartTime) {
		return nil, invalid("get_all_trades", "end before start")
	}
	fetch := func(ctx context.Context, end time.Time) ([]Trade, error) {
		return c.GetTrades(ctx, market, TradesQuery{
			Limit:     tradesPageLimit,
			StartTime: q.StartTime,
			EndTime:   end,
			Order:     q.Order,
		})
	}
	log := c.log.WithFields(logrus.Fields{"event": "ftx_trade_history", "market": market})
	return collectTrades(ctx, fetch, tradesPageLimit, q.EndTime, log)
}

// collectTrades pages through fetch until a short or empty page. After each
// page the cursor moves to the oldest trade time seen, floored to seconds,
// so boundary trades are fetched twice and dropped by id.
func collectTrades(ctx context.Context, fetch tradePageFunc, limit int, end time.Time, log logrus.FieldLogger) ([]Trade, error) {
	seen := make(map[int64]struct{})
	results := make([]Trade, 0)
	for {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		page, err := fetch(ctx, end)
		if err != nil {
			return results, err
		}
		log.Infof("Adding %d trades with end time %s", len(page), formatCursor(end))

		added := 0
		for _, trade := range page {
			if _, ok := seen[trade.ID]; ok {
				continue
			}
			seen[trade.ID] = struct{}{}
			results = append(results, trade)
			added++
		}
		if len(page) == 0 {
			return results, nil
		}

		oldest := page[0].Time
		for _, trade := range page[1:] {
			if trade.Time.Before(oldest) {
				oldest = trade.Time
			}
		}
		next := time.Unix(oldest.Unix(), 0)

		if len(page) < limit {
			return results, nil
		}
		// More than a page of trades inside one second never moves the
		// cursor; the rest of that second is unreachable.
		if added == 0 && !end.IsZero() && !next.Before(end) {
			log.WithField("end_time", formatCursor(end)).Warn("trade pagination made no progress, stopping")
			return results, nil
		}
		end = next
	}
}

func formatCursor(end time.Time) string {
	if end.IsZero() {
		return "none"
	}
	return end.UTC().Format(time.RFC3339)
}
