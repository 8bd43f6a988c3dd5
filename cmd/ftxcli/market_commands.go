package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"ftx-rest/internal/exchange/ftx"
)

var marketFlag = &cli.StringFlag{
	Name:     "market",
	Aliases:  []string{"m"},
	Usage:    "market name, e.g. BTC-PERP or ETH/USD",
	Required: true,
}

var windowFlags = []cli.Flag{
	&cli.StringFlag{Name: "start", Usage: "start time (YYYY-MM-DD or RFC3339, UTC)"},
	&cli.StringFlag{Name: "end", Usage: "end time (YYYY-MM-DD or RFC3339, UTC), inclusive for date"},
}

func withWindow(flags ...cli.Flag) []cli.Flag {
	return append(flags, windowFlags...)
}

var marketsCommand = &cli.Command{
	Name:  "markets",
	Usage: "list all markets",
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		markets, err := client.ListMarkets(ctx)
		if err != nil {
			return err
		}
		return printJSON(markets)
	},
}

var marketCommand = &cli.Command{
	Name:  "market",
	Usage: "show one market",
	Flags: []cli.Flag{marketFlag},
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		market, err := client.GetMarket(ctx, c.String("market"))
		if err != nil {
			return err
		}
		return printJSON(market)
	},
}

var futuresCommand = &cli.Command{
	Name:      "futures",
	Usage:     "list futures, or show one when a name is given",
	ArgsUsage: "[future]",
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		if name := c.Args().First(); name != "" {
			future, err := client.GetFuture(ctx, name)
			if err != nil {
				return err
			}
			return printJSON(future)
		}
		futures, err := client.ListFutures(ctx)
		if err != nil {
			return err
		}
		return printJSON(futures)
	},
}

var orderbookCommand = &cli.Command{
	Name:  "orderbook",
	Usage: "show the order book",
	Flags: []cli.Flag{
		marketFlag,
		&cli.IntFlag{Name: "depth", Usage: "levels per side, 0 for the server default"},
	},
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		book, err := client.GetOrderbook(ctx, c.String("market"), c.Int("depth"))
		if err != nil {
			return err
		}
		return printJSON(book)
	},
}

var tradesCommand = &cli.Command{
	Name:  "trades",
	Usage: "show one page of recent trades",
	Flags: withWindow(
		marketFlag,
		&cli.IntFlag{Name: "limit", Usage: "page size"},
	),
	Action: func(c *cli.Context) error {
		start, end, err := resolveWindow(c.String("start"), c.String("end"))
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		trades, err := client.GetTrades(ctx, c.String("market"), ftx.TradesQuery{
			Limit:     c.Int("limit"),
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return err
		}
		return printJSON(trades)
	},
}

var allTradesCommand = &cli.Command{
	Name:  "all-trades",
	Usage: "page backwards through the full trade history of a market",
	Flags: withWindow(
		marketFlag,
		&cli.StringFlag{Name: "order", Usage: "asc for oldest first within each page"},
	),
	Action: func(c *cli.Context) error {
		start, end, err := resolveWindow(c.String("start"), c.String("end"))
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		trades, err := client.GetAllTrades(ctx, c.String("market"), ftx.TradeHistoryQuery{
			StartTime: start,
			EndTime:   end,
			Order:     c.String("order"),
		})
		if err != nil {
			return err
		}
		logger.WithField("event", "all_trades_done").Infof("fetched %d trades", len(trades))
		return printJSON(trades)
	},
}

var candlesCommand = &cli.Command{
	Name:  "candles",
	Usage: "show historical OHLCV candles",
	Flags: withWindow(
		marketFlag,
		&cli.DurationFlag{Name: "resolution", Value: time.Hour, Usage: "candle length: 15s, 1m, 5m, 15m, 1h, 4h or 24h"},
	),
	Action: func(c *cli.Context) error {
		start, end, err := resolveWindow(c.String("start"), c.String("end"))
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		candles, err := client.GetHistoricalPrices(ctx, c.String("market"), c.Duration("resolution"), start, end)
		if err != nil {
			return err
		}
		return printJSON(candles)
	},
}

var fundingCommand = &cli.Command{
	Name:  "funding",
	Usage: "show funding rates of perpetual futures",
	Flags: withWindow(
		&cli.StringFlag{Name: "future", Aliases: []string{"f"}, Usage: "restrict to one future"},
	),
	Action: func(c *cli.Context) error {
		start, end, err := resolveWindow(c.String("start"), c.String("end"))
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		rates, err := client.GetFundingRates(ctx, c.String("future"), start, end)
		if err != nil {
			return errors.Wrap(err, "funding rates")
		}
		return printJSON(rates)
	},
}
