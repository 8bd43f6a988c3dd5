package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"ftx-rest/internal/core"
	"ftx-rest/internal/exchange/ftx"
)

var optionalMarketFlag = &cli.StringFlag{
	Name:    "market",
	Aliases: []string{"m"},
	Usage:   "restrict to one market",
}

var sideFlag = &cli.StringFlag{
	Name:     "side",
	Aliases:  []string{"s"},
	Usage:    "buy or sell",
	Required: true,
}

var ordersCommand = &cli.Command{
	Name:  "orders",
	Usage: "list open orders",
	Flags: []cli.Flag{optionalMarketFlag},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		orders, err := client.GetOpenOrders(ctx, c.String("market"))
		if err != nil {
			return err
		}
		return printJSON(orders)
	},
}

var orderHistoryCommand = &cli.Command{
	Name:  "order-history",
	Usage: "list closed orders",
	Flags: withWindow(
		optionalMarketFlag,
		&cli.StringFlag{Name: "side", Usage: "buy or sell"},
		&cli.StringFlag{Name: "order-type", Usage: "limit or market"},
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
		orders, err := client.GetOrderHistory(ctx, ftx.OrderHistoryQuery{
			Market:    c.String("market"),
			Side:      core.Side(c.String("side")),
			OrderType: core.OrderType(c.String("order-type")),
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return err
		}
		return printJSON(orders)
	},
}

var conditionalOrdersCommand = &cli.Command{
	Name:  "conditional-orders",
	Usage: "list open trigger orders",
	Flags: []cli.Flag{optionalMarketFlag},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		orders, err := client.GetConditionalOrders(ctx, c.String("market"))
		if err != nil {
			return err
		}
		return printJSON(orders)
	},
}

var conditionalHistoryCommand = &cli.Command{
	Name:  "conditional-history",
	Usage: "list closed trigger orders",
	Flags: withWindow(
		optionalMarketFlag,
		&cli.StringFlag{Name: "side", Usage: "buy or sell"},
		&cli.StringFlag{Name: "type", Usage: "stop, take_profit or trailing_stop"},
		&cli.StringFlag{Name: "order-type", Usage: "limit or market"},
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
		orders, err := client.GetConditionalOrderHistory(ctx, ftx.ConditionalOrderHistoryQuery{
			Market:    c.String("market"),
			Side:      core.Side(c.String("side")),
			Type:      core.ConditionalType(c.String("type")),
			OrderType: core.OrderType(c.String("order-type")),
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return err
		}
		return printJSON(orders)
	},
}

var placeCommand = &cli.Command{
	Name:  "place",
	Usage: "place a limit or market order",
	Flags: []cli.Flag{
		marketFlag,
		sideFlag,
		&cli.StringFlag{Name: "type", Value: string(core.Limit), Usage: "limit or market"},
		&cli.StringFlag{Name: "price", Usage: "limit price"},
		&cli.StringFlag{Name: "size", Usage: "order size", Required: true},
		&cli.BoolFlag{Name: "reduce-only"},
		&cli.BoolFlag{Name: "ioc", Usage: "immediate or cancel"},
		&cli.BoolFlag{Name: "post-only"},
		&cli.StringFlag{Name: "client-id", Usage: "client order id; \"auto\" generates one"},
		&cli.BoolFlag{Name: "normalize", Usage: "round price and size down to the market increments first"},
	},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		price, err := decimalFlag(c, "price")
		if err != nil {
			return err
		}
		size, err := decimalFlag(c, "size")
		if err != nil {
			return err
		}
		req := ftx.OrderRequest{
			Market:     c.String("market"),
			Side:       core.Side(strings.ToLower(c.String("side"))),
			Type:       core.OrderType(strings.ToLower(c.String("type"))),
			Price:      price,
			Size:       size,
			ReduceOnly: c.Bool("reduce-only"),
			IOC:        c.Bool("ioc"),
			PostOnly:   c.Bool("post-only"),
			ClientID:   resolveClientID(c.String("client-id")),
		}

		ctx, cancel := commandContext(c)
		defer cancel()
		if c.Bool("normalize") {
			if req, err = normalizeOrderRequest(ctx, req); err != nil {
				return err
			}
		}
		if err := checkMaxOrderSize(req.Size); err != nil {
			return err
		}
		order, err := client.PlaceOrder(ctx, req)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"event":     "order_placed",
			"market":    order.Market,
			"order_id":  order.ID,
			"client_id": order.ClientID,
		}).Info("order placed")
		return printJSON(order)
	},
}

var placeConditionalCommand = &cli.Command{
	Name:  "place-conditional",
	Usage: "place a stop, take-profit or trailing-stop order",
	Flags: []cli.Flag{
		marketFlag,
		sideFlag,
		&cli.StringFlag{Name: "type", Value: string(core.Stop), Usage: "stop, take_profit or trailing_stop"},
		&cli.StringFlag{Name: "size", Usage: "order size", Required: true},
		&cli.StringFlag{Name: "trigger-price", Usage: "required for stop and take_profit"},
		&cli.StringFlag{Name: "limit-price", Usage: "place a limit order once triggered"},
		&cli.StringFlag{Name: "trail-value", Usage: "required for trailing_stop; negative for sells"},
		&cli.BoolFlag{Name: "reduce-only"},
		&cli.BoolFlag{Name: "keep-limit-orders", Usage: "do not cancel resting limit orders when triggered"},
	},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		size, err := decimalFlag(c, "size")
		if err != nil {
			return err
		}
		if err := checkMaxOrderSize(size); err != nil {
			return err
		}
		trigger, err := optionalDecimalFlag(c, "trigger-price")
		if err != nil {
			return err
		}
		limit, err := optionalDecimalFlag(c, "limit-price")
		if err != nil {
			return err
		}
		trail, err := optionalDecimalFlag(c, "trail-value")
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		order, err := client.PlaceConditionalOrder(ctx, ftx.ConditionalOrderRequest{
			Market:             c.String("market"),
			Side:               core.Side(strings.ToLower(c.String("side"))),
			Size:               size,
			Type:               core.ConditionalType(strings.ToLower(c.String("type"))),
			TriggerPrice:       trigger,
			LimitPrice:         limit,
			TrailValue:         trail,
			ReduceOnly:         c.Bool("reduce-only"),
			KeepLimitOnTrigger: c.Bool("keep-limit-orders"),
		})
		if err != nil {
			return err
		}
		return printJSON(order)
	},
}

var modifyCommand = &cli.Command{
	Name:  "modify",
	Usage: "change the price or size of an open order",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "order-id", Usage: "exchange order id"},
		&cli.StringFlag{Name: "client-order-id", Usage: "client order id of the order to modify"},
		&cli.StringFlag{Name: "price"},
		&cli.StringFlag{Name: "size"},
		&cli.StringFlag{Name: "new-client-id", Usage: "client id for the replacement order; \"auto\" generates one"},
	},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		price, err := optionalDecimalFlag(c, "price")
		if err != nil {
			return err
		}
		size, err := optionalDecimalFlag(c, "size")
		if err != nil {
			return err
		}
		if size != nil {
			if err := checkMaxOrderSize(*size); err != nil {
				return err
			}
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		order, err := client.ModifyOrder(ctx, ftx.ModifyOrderRequest{
			OrderID:       c.String("order-id"),
			ClientOrderID: c.String("client-order-id"),
			Price:         price,
			Size:          size,
			NewClientID:   resolveClientID(c.String("new-client-id")),
		})
		if err != nil {
			return err
		}
		return printJSON(order)
	},
}

var cancelCommand = &cli.Command{
	Name:      "cancel",
	Usage:     "cancel one order",
	ArgsUsage: "<order-id>",
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		result, err := client.CancelOrder(ctx, c.Args().First())
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var cancelAllCommand = &cli.Command{
	Name:  "cancel-all",
	Usage: "cancel all open orders",
	Flags: []cli.Flag{
		optionalMarketFlag,
		&cli.BoolFlag{Name: "conditional-only"},
		&cli.BoolFlag{Name: "limit-only"},
	},
	Action: func(c *cli.Context) error {
		if err := requireCredentials(); err != nil {
			return err
		}
		ctx, cancel := commandContext(c)
		defer cancel()
		result, err := client.CancelOrders(ctx, ftx.CancelOrdersRequest{
			Market:                c.String("market"),
			ConditionalOrdersOnly: c.Bool("conditional-only"),
			LimitOrdersOnly:       c.Bool("limit-only"),
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func resolveClientID(raw string) string {
	if raw == "auto" {
		return uuid.NewString()
	}
	return raw
}

// normalizeOrderRequest rounds the request down to the market's price and
// size increments.
func normalizeOrderRequest(ctx context.Context, req ftx.OrderRequest) (ftx.OrderRequest, error) {
	market, err := client.GetMarket(ctx, req.Market)
	if err != nil {
		return req, err
	}
	normalized, err := core.NormalizeOrder(core.Order{
		Market: req.Market,
		Side:   req.Side,
		Type:   req.Type,
		Price:  req.Price,
		Size:   req.Size,
	}, market.Rules())
	if err != nil {
		return req, errors.Wrapf(err, "normalize %s order", req.Market)
	}
	if !normalized.Size.Equal(req.Size) || !normalized.Price.Equal(req.Price) {
		logger.WithFields(logrus.Fields{
			"event":  "order_normalized",
			"market": req.Market,
			"price":  normalized.Price.String(),
			"size":   normalized.Size.String(),
		}).Info("order rounded to market increments")
	}
	req.Price = normalized.Price
	req.Size = normalized.Size
	return req, nil
}

func checkMaxOrderSize(size decimal.Decimal) error {
	limit := cfg.Defaults.MaxOrderSize.Decimal
	if limit.IsPositive() && size.GreaterThan(limit) {
		return errors.Errorf("size %s exceeds defaults.max_order_size %s", size, limit)
	}
	return nil
}
