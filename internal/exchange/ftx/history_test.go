package ftx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftx-rest/internal/core"
	"ftx-rest/internal/logging"
)

var historyBase = time.Date(2021, 12, 1, 12, 0, 0, 0, time.UTC)

// tradeRange builds trades with ids [from, to]; higher ids are older, one
// second apart.
func tradeRange(from, to int64) []Trade {
	trades := make([]Trade, 0, to-from+1)
	for id := from; id <= to; id++ {
		trades = append(trades, Trade{
			ID:   id,
			Side: core.Buy,
			Time: historyBase.Add(-time.Duration(id) * time.Second).Add(250 * time.Millisecond),
		})
	}
	return trades
}

type scriptedPages struct {
	pages [][]Trade
	ends  []time.Time
}

func (s *scriptedPages) fetch(_ context.Context, end time.Time) ([]Trade, error) {
	s.ends = append(s.ends, end)
	idx := len(s.ends) - 1
	if idx >= len(s.pages) {
		return nil, nil
	}
	return s.pages[idx], nil
}

func TestCollectTradesDedupsAcrossPageBoundaries(t *testing.T) {
	script := &scriptedPages{pages: [][]Trade{
		tradeRange(1, 100),
		tradeRange(96, 195),
		tradeRange(191, 230),
	}}
	require.Len(t, script.pages[2], 40)

	trades, err := collectTrades(context.Background(), script.fetch, tradesPageLimit, time.Time{}, logging.Discard())
	require.NoError(t, err)

	require.Len(t, script.ends, 3, "stops after the short third page")
	assert.True(t, script.ends[0].IsZero())
	assert.Equal(t, historyBase.Add(-100*time.Second).Unix(), script.ends[1].Unix())
	assert.Equal(t, historyBase.Add(-195*time.Second).Unix(), script.ends[2].Unix())
	assert.Zero(t, script.ends[1].Nanosecond(), "cursor is floored to whole seconds")

	require.Len(t, trades, 230)
	seen := make(map[int64]bool, len(trades))
	for i, trade := range trades {
		assert.False(t, seen[trade.ID], "duplicate id %d", trade.ID)
		seen[trade.ID] = true
		assert.EqualValues(t, i+1, trade.ID, "page order is preserved")
	}
}

func TestCollectTradesEmptyFirstPage(t *testing.T) {
	script := &scriptedPages{pages: [][]Trade{{}}}
	trades, err := collectTrades(context.Background(), script.fetch, tradesPageLimit, historyBase, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, trades)
	assert.Empty(t, trades)
	raw, err := json.Marshal(trades)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
	assert.Len(t, script.ends, 1)
	assert.Equal(t, historyBase, script.ends[0])
}

func TestCollectTradesStopsWhenCursorCannotMove(t *testing.T) {
	sameSecond := make([]Trade, tradesPageLimit)
	for i := range sameSecond {
		sameSecond[i] = Trade{ID: int64(i + 1), Time: historyBase.Add(time.Duration(i) * time.Millisecond)}
	}
	script := &scriptedPages{pages: [][]Trade{sameSecond, sameSecond, sameSecond}}

	trades, err := collectTrades(context.Background(), script.fetch, tradesPageLimit, time.Time{}, logging.Discard())
	require.NoError(t, err)
	assert.Len(t, trades, tradesPageLimit)
	assert.Len(t, script.ends, 2)
}

func TestCollectTradesPropagatesErrors(t *testing.T) {
	boom := newAPIError(http.StatusBadRequest, "Invalid parameter")
	calls := 0
	fetch := func(context.Context, time.Time) ([]Trade, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return tradeRange(1, 100), nil
	}
	trades, err := collectTrades(context.Background(), fetch, tradesPageLimit, time.Time{}, logging.Discard())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, trades, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = collectTrades(ctx, fetch, tradesPageLimit, time.Time{}, logging.Discard())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetAllTradesOverHTTP(t *testing.T) {
	start := historyBase.Add(-time.Hour)
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		var page []Trade
		if r.URL.Query().Get("end_time") == "" {
			page = tradeRange(1, 100)
		} else {
			page = tradeRange(100, 102)
		}
		rows := make([]map[string]any, 0, len(page))
		for _, trade := range page {
			rows = append(rows, map[string]any{
				"id":          trade.ID,
				"price":       "50000.5",
				"size":        0.01,
				"side":        "sell",
				"liquidation": false,
				"time":        trade.Time.Format(time.RFC3339Nano),
			})
		}
		writeResult(t, w, rows)
	})

	trades, err := client.GetAllTrades(context.Background(), "BTC-PERP", TradeHistoryQuery{StartTime: start})
	require.NoError(t, err)
	assert.Len(t, trades, 102)
	assert.True(t, trades[0].Price.Equal(mustDecimal("50000.5")))
	assert.Equal(t, core.Sell, trades[0].Side)

	reqs := requests()
	require.Len(t, reqs, 2)
	startParam := strconv.FormatInt(start.Unix(), 10)
	endParam := strconv.FormatInt(historyBase.Add(-100*time.Second).Unix(), 10)
	assert.Equal(t, "/api/markets/BTC-PERP/trades?limit=100&start_time="+startParam, reqs[0].RequestURI)
	assert.Equal(t, "/api/markets/BTC-PERP/trades?end_time="+endParam+"&limit=100&start_time="+startParam, reqs[1].RequestURI)

	_, err = client.GetAllTrades(context.Background(), "", TradeHistoryQuery{})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = client.GetAllTrades(context.Background(), "BTC-PERP", TradeHistoryQuery{Order: "desc"})
	assert.ErrorIs(t, err, core.ErrValidation)
}
