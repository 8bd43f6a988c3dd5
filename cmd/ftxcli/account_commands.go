package main

import (
	"github.com/urfave/cli/v2"

	"ftx-rest/internal/exchange/ftx"
)

var avgPriceFlag = &cli.BoolFlag{
	Name:  "avg-price",
	Usage: "include recent average open and break-even prices",
}

var accountCommand = &cli.Command{
	Name:  "account",
	Usage: "show account information",
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		info, err := client.GetAccountInfo(ctx)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

var positionsCommand = &cli.Command{
	Name:  "positions",
	Usage: "list open positions",
	Flags: []cli.Flag{avgPriceFlag},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		positions, err := client.GetPositions(ctx, c.Bool("avg-price"))
		if err != nil {
			return err
		}
		return printJSON(positions)
	},
}

var positionCommand = &cli.Command{
	Name:      "position",
	Usage:     "show the position on one future, null when there is none",
	ArgsUsage: "<future>",
	Flags:     []cli.Flag{avgPriceFlag},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		name := c.Args().First()
		if name == "" {
			return cli.Exit("future name required", 2)
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		pos, err := client.GetPosition(ctx, name, c.Bool("avg-price"))
		if err != nil {
			return err
		}
		return printJSON(pos)
	},
}

var balancesCommand = &cli.Command{
	Name:  "balances",
	Usage: "list wallet balances",
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		balances, err := client.GetBalances(ctx)
		if err != nil {
			return err
		}
		return printJSON(balances)
	},
}

var depositAddressCommand = &cli.Command{
	Name:      "deposit-address",
	Usage:     "show the deposit address for a coin",
	ArgsUsage: "<coin>",
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		addr, err := client.GetDepositAddress(ctx, c.Args().First())
		if err != nil {
			return err
		}
		return printJSON(addr)
	},
}

var fillsCommand = &cli.Command{
	Name:  "fills",
	Usage: "list fills",
	Flags: withWindow(
		&cli.StringFlag{Name: "market", Aliases: []string{"m"}, Usage: "restrict to one market"},
		&cli.Int64Flag{Name: "order-id", Usage: "restrict to one order"},
	),
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		start, end, err := resolveWindow(c.String("start"), c.String("end"))
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		fills, err := client.GetFills(ctx, ftx.FillsQuery{
			Market:    c.String("market"),
			OrderID:   c.Int64("order-id"),
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return err
		}
		return printJSON(fills)
	},
}
