package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"ftx-rest/internal/config"
	"ftx-rest/internal/exchange/ftx"
	"ftx-rest/internal/logging"
)

var (
	cfgPath  string
	envFile  string
	logLevel string
	timeout  time.Duration

	cfg    config.Config
	logger *logrus.Logger
	client *ftx.Client
)

func main() {
	app := cli.NewApp()
	app.Name = "ftxcli"
	app.Usage = "query markets, account state and orders over the signed REST API"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to the YAML config; optional when credentials come from the environment",
			Destination: &cfgPath,
		},
		&cli.StringFlag{
			Name:        "env-file",
			Value:       ".env",
			Usage:       "dotenv file loaded before the config; a missing file is ignored",
			Destination: &envFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "override log.level from the config",
			Destination: &logLevel,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Value:       2 * time.Minute,
			Usage:       "deadline for a whole command, 0 disables it",
			Destination: &timeout,
		},
	}
	app.Before = setup
	app.Commands = []*cli.Command{
		marketsCommand,
		marketCommand,
		futuresCommand,
		orderbookCommand,
		tradesCommand,
		allTradesCommand,
		candlesCommand,
		fundingCommand,
		accountCommand,
		positionsCommand,
		positionCommand,
		balancesCommand,
		depositAddressCommand,
		fillsCommand,
		ordersCommand,
		orderHistoryCommand,
		conditionalOrdersCommand,
		conditionalHistoryCommand,
		placeCommand,
		placeConditionalCommand,
		modifyCommand,
		cancelCommand,
		cancelAllCommand,
		streamCommand,
		checkCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(_ *cli.Context) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err = logging.New(logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		JSON:       cfg.Log.JSON,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return errors.Wrap(err, "init logging")
	}
	client, err = ftx.NewClient(cfg.Exchange, logger)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"event":      "ftxcli_start",
		"base_url":   cfg.Exchange.RestBaseURL,
		"subaccount": cfg.Exchange.Subaccount,
		"auth":       cfg.Exchange.HasCredentials(),
	}).Debug("client ready")
	return nil
}

// commandContext is cancelled on SIGINT/SIGTERM and after --timeout.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func requireCredentials() error {
	if !cfg.Exchange.HasCredentials() {
		return errors.Errorf("this command needs credentials: set %s and %s or exchange.api_key/api_secret", config.EnvAPIKey, config.EnvAPISecret)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func decimalFlag(c *cli.Context, name string) (decimal.Decimal, error) {
	raw := c.String(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "--%s", name)
	}
	return d, nil
}

// optionalDecimalFlag returns nil when the flag was not given.
func optionalDecimalFlag(c *cli.Context, name string) (*decimal.Decimal, error) {
	if !c.IsSet(name) {
		return nil, nil
	}
	d, err := decimalFlag(c, name)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
