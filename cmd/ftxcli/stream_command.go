package main

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var streamCommand = &cli.Command{
	Name:  "stream",
	Usage: "subscribe to a websocket channel and print updates until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "channel", Value: "trades", Usage: "trades, ticker, orderbook, fills or orders"},
		&cli.StringFlag{Name: "market", Aliases: []string{"m"}, Usage: "market for public channels"},
	},
	Action: func(c *cli.Context) error {
		// Streams run until interrupted, so only the signal context applies.
		timeout = 0
		ctx, cancel := commandContext(c)
		defer cancel()

		stream, err := client.NewStream(ctx)
		if err != nil {
			return err
		}
		defer stream.Close()
		if err := stream.Subscribe(c.String("channel"), c.String("market")); err != nil {
			return err
		}
		log := logger.WithFields(logrus.Fields{
			"event":   "stream",
			"channel": c.String("channel"),
			"market":  c.String("market"),
		})
		log.Info("subscribed")

		messages, errs := stream.Messages(ctx)
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					select {
					case err := <-errs:
						return err
					default:
						return nil
					}
				}
				if err := printJSON(msg); err != nil {
					return err
				}
			case err := <-errs:
				log.WithError(err).Warn("stream error")
			case <-ctx.Done():
				return nil
			}
		}
	},
}
