package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

type checkStatus string

const (
	statusPass checkStatus = "PASS"
	statusFail checkStatus = "FAIL"
	statusSkip checkStatus = "SKIP"
)

type checkResult struct {
	Name       string      `json:"name"`
	Status     checkStatus `json:"status"`
	DurationMs int64       `json:"duration_ms"`
	Detail     string      `json:"detail,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type checkReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	BaseURL    string        `json:"base_url"`
	Market     string        `json:"market"`
	Checks     []checkResult `json:"checks"`
}

func (r checkReport) failed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == statusFail {
			n++
		}
	}
	return n
}

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "run read-only connectivity and credential checks against the API",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "market", Aliases: []string{"m"}, Value: "BTC-PERP", Usage: "market used for market-data checks"},
		&cli.BoolFlag{Name: "stream", Usage: "also dial the websocket and wait for one trades update"},
		&cli.DurationFlag{Name: "stream-wait", Value: 10 * time.Second, Usage: "how long to wait for a stream update"},
		&cli.StringFlag{Name: "out-json", Usage: "optional path for the JSON report"},
	},
	Action: func(c *cli.Context) error {
		ctx, cancel := commandContext(c)
		defer cancel()
		market := c.String("market")

		r := checkReport{
			StartedAt: time.Now().UTC(),
			BaseURL:   cfg.Exchange.RestBaseURL,
			Market:    market,
		}
		run := func(name string, fn func() (string, error)) {
			start := time.Now()
			detail, err := fn()
			cr := checkResult{
				Name:       name,
				DurationMs: time.Since(start).Milliseconds(),
				Detail:     detail,
				Status:     statusPass,
			}
			if err != nil {
				cr.Status = statusFail
				cr.Error = err.Error()
			}
			r.Checks = append(r.Checks, cr)
			printCheck(cr)
		}
		skip := func(name, reason string) {
			cr := checkResult{Name: name, Status: statusSkip, Detail: reason}
			r.Checks = append(r.Checks, cr)
			printCheck(cr)
		}

		run("market_info", func() (string, error) {
			m, err := client.GetMarket(ctx, market)
			if err != nil {
				return "", err
			}
			rules := m.Rules()
			return fmt.Sprintf("last=%s priceTick=%s sizeStep=%s minSize=%s", m.Last, rules.PriceTick, rules.SizeStep, rules.MinSize), nil
		})
		run("orderbook", func() (string, error) {
			book, err := client.GetOrderbook(ctx, market, 1)
			if err != nil {
				return "", err
			}
			if len(book.Asks) == 0 || len(book.Bids) == 0 {
				return "", errors.New("empty book")
			}
			return fmt.Sprintf("bid=%s ask=%s", book.Bids[0].Price, book.Asks[0].Price), nil
		})
		if cfg.Exchange.HasCredentials() {
			run("account", func() (string, error) {
				info, err := client.GetAccountInfo(ctx)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("username=%s collateral=%s positions=%d", info.Username, info.Collateral, len(info.Positions)), nil
			})
			run("open_orders", func() (string, error) {
				orders, err := client.GetOpenOrders(ctx, market)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("open=%d", len(orders)), nil
			})
		} else {
			skip("account", "no credentials")
			skip("open_orders", "no credentials")
		}
		if c.Bool("stream") {
			run("stream_trades", func() (string, error) {
				return checkStream(ctx, market, c.Duration("stream-wait"))
			})
		}

		r.FinishedAt = time.Now().UTC()
		fmt.Printf("\nsummary market=%s checks=%d fail=%d duration=%s\n",
			r.Market,
			len(r.Checks),
			r.failed(),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
		)
		if path := c.String("out-json"); path != "" {
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
		}
		if n := r.failed(); n > 0 {
			return cli.Exit(fmt.Sprintf("%d check(s) failed", n), 1)
		}
		return nil
	},
}

func checkStream(ctx context.Context, market string, wait time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	stream, err := client.NewStream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()
	if err := stream.Subscribe("trades", market); err != nil {
		return "", err
	}
	messages, errs := stream.Messages(ctx)
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return "", errors.New("stream closed")
			}
			trades, err := msg.Trades()
			if err != nil {
				continue
			}
			return fmt.Sprintf("trades=%d", len(trades)), nil
		case err := <-errs:
			return "", err
		case <-ctx.Done():
			return "", errors.Errorf("no trades update within %s", wait)
		}
	}
}

func printCheck(cr checkResult) {
	switch cr.Status {
	case statusFail:
		fmt.Printf("[FAIL] %s (%dms) - %s\n", cr.Name, cr.DurationMs, cr.Error)
	case statusSkip:
		fmt.Printf("[SKIP] %s - %s\n", cr.Name, cr.Detail)
	default:
		fmt.Printf("[PASS] %s (%dms)", cr.Name, cr.DurationMs)
		if cr.Detail != "" {
			fmt.Printf(" - %s", cr.Detail)
		}
		fmt.Println()
	}
}
