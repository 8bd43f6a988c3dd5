package ftx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"ftx-rest/internal/core"
)

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

type Market struct {
	Name           string          `json:"name"`
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	Type           string          `json:"type"`
	Underlying     string          `json:"underlying"`
	Enabled        bool            `json:"enabled"`
	PostOnly       bool            `json:"postOnly"`
	Ask            decimal.Decimal `json:"ask"`
	Bid            decimal.Decimal `json:"bid"`
	Last           decimal.Decimal `json:"last"`
	Price          decimal.Decimal `json:"price"`
	PriceIncrement decimal.Decimal `json:"priceIncrement"`
	SizeIncrement  decimal.Decimal `json:"sizeIncrement"`
	MinProvideSize decimal.Decimal `json:"minProvideSize"`
	Change1h       decimal.Decimal `json:"change1h"`
	Change24h      decimal.Decimal `json:"change24h"`
	QuoteVolume24h decimal.Decimal `json:"quoteVolume24h"`
	VolumeUSD24h   decimal.Decimal `json:"volumeUsd24h"`
}

// Rules returns the precision constraints orders on this market must meet.
func (m Market) Rules() core.Rules {
	return core.Rules{
		PriceTick: m.PriceIncrement,
		SizeStep:  m.SizeIncrement,
		MinSize:   m.MinProvideSize,
	}
}

type Future struct {
	Name           string          `json:"name"`
	Underlying     string          `json:"underlying"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	Expiry         *time.Time      `json:"expiry"`
	Perpetual      bool            `json:"perpetual"`
	Expired        bool            `json:"expired"`
	Enabled        bool            `json:"enabled"`
	PostOnly       bool            `json:"postOnly"`
	Ask            decimal.Decimal `json:"ask"`
	Bid            decimal.Decimal `json:"bid"`
	Last           decimal.Decimal `json:"last"`
	Index          decimal.Decimal `json:"index"`
	Mark           decimal.Decimal `json:"mark"`
	PriceIncrement decimal.Decimal `json:"priceIncrement"`
	SizeIncrement  decimal.Decimal `json:"sizeIncrement"`
	UpperBound     decimal.Decimal `json:"upperBound"`
	LowerBound     decimal.Decimal `json:"lowerBound"`
	Change1h       decimal.Decimal `json:"change1h"`
	Change24h      decimal.Decimal `json:"change24h"`
	VolumeUSD24h   decimal.Decimal `json:"volumeUsd24h"`
}

// PriceLevel is one [price, size] row of an order book side.
type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var raw [2]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Price, p.Size = raw[0], raw[1]
	return nil
}

func (p PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]json.Number{json.Number(p.Price.String()), json.Number(p.Size.String())})
}

type Orderbook struct {
	Asks []PriceLevel `json:"asks"`
	Bids []PriceLevel `json:"bids"`
}

type Trade struct {
	ID          int64           `json:"id"`
	Price       decimal.Decimal `json:"price"`
	Size        decimal.Decimal `json:"size"`
	Side        core.Side       `json:"side"`
	Liquidation bool            `json:"liquidation"`
	Time        time.Time       `json:"time"`
}

type Candle struct {
	StartTime time.Time       `json:"startTime"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

type FundingRate struct {
	Future string          `json:"future"`
	Rate   decimal.Decimal `json:"rate"`
	Time   time.Time       `json:"time"`
}

type AccountInfo struct {
	Username                     string          `json:"username"`
	BackstopProvider             bool            `json:"backstopProvider"`
	Liquidating                  bool            `json:"liquidating"`
	Collateral                   decimal.Decimal `json:"collateral"`
	FreeCollateral               decimal.Decimal `json:"freeCollateral"`
	InitialMarginRequirement     decimal.Decimal `json:"initialMarginRequirement"`
	MaintenanceMarginRequirement decimal.Decimal `json:"maintenanceMarginRequirement"`
	Leverage                     decimal.Decimal `json:"leverage"`
	MakerFee                     decimal.Decimal `json:"makerFee"`
	TakerFee                     decimal.Decimal `json:"takerFee"`
	MarginFraction               decimal.Decimal `json:"marginFraction"`
	OpenMarginFraction           decimal.Decimal `json:"openMarginFraction"`
	TotalAccountValue            decimal.Decimal `json:"totalAccountValue"`
	TotalPositionSize            decimal.Decimal `json:"totalPositionSize"`
	Positions                    []Position      `json:"positions"`
}

type Position struct {
	Future                       string          `json:"future"`
	Side                         core.Side       `json:"side"`
	Size                         decimal.Decimal `json:"size"`
	NetSize                      decimal.Decimal `json:"netSize"`
	Cost                         decimal.Decimal `json:"cost"`
	EntryPrice                   decimal.Decimal `json:"entryPrice"`
	EstimatedLiquidationPrice    decimal.Decimal `json:"estimatedLiquidationPrice"`
	InitialMarginRequirement     decimal.Decimal `json:"initialMarginRequirement"`
	MaintenanceMarginRequirement decimal.Decimal `json:"maintenanceMarginRequirement"`
	LongOrderSize                decimal.Decimal `json:"longOrderSize"`
	ShortOrderSize               decimal.Decimal `json:"shortOrderSize"`
	OpenSize                     decimal.Decimal `json:"openSize"`
	RealizedPnl                  decimal.Decimal `json:"realizedPnl"`
	UnrealizedPnl                decimal.Decimal `json:"unrealizedPnl"`
	// Only populated when requested with showAvgPrice.
	RecentAverageOpenPrice decimal.NullDecimal `json:"recentAverageOpenPrice"`
	RecentBreakEvenPrice   decimal.NullDecimal `json:"recentBreakEvenPrice"`
}

type Balance struct {
	Coin                   string          `json:"coin"`
	Free                   decimal.Decimal `json:"free"`
	Total                  decimal.Decimal `json:"total"`
	USDValue               decimal.Decimal `json:"usdValue"`
	AvailableWithoutBorrow decimal.Decimal `json:"availableWithoutBorrow"`
}

type DepositAddress struct {
	Address string `json:"address"`
	Tag     string `json:"tag"`
}

type Order struct {
	ID            int64           `json:"id"`
	ClientID      string          `json:"clientId"`
	Market        string          `json:"market"`
	Future        string          `json:"future"`
	Type          core.OrderType  `json:"type"`
	Side          core.Side       `json:"side"`
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	FilledSize    decimal.Decimal `json:"filledSize"`
	RemainingSize decimal.Decimal `json:"remainingSize"`
	AvgFillPrice  decimal.Decimal `json:"avgFillPrice"`
	Status        string          `json:"status"`
	ReduceOnly    bool            `json:"reduceOnly"`
	IOC           bool            `json:"ioc"`
	PostOnly      bool            `json:"postOnly"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ConditionalOrder struct {
	ID                   int64           `json:"id"`
	OrderID              int64           `json:"orderId"`
	Market               string          `json:"market"`
	Future               string          `json:"future"`
	Type                 string          `json:"type"`
	OrderType            core.OrderType  `json:"orderType"`
	Side                 core.Side       `json:"side"`
	Size                 decimal.Decimal `json:"size"`
	FilledSize           decimal.Decimal `json:"filledSize"`
	AvgFillPrice         decimal.Decimal `json:"avgFillPrice"`
	TriggerPrice         decimal.Decimal `json:"triggerPrice"`
	OrderPrice           decimal.Decimal `json:"orderPrice"`
	TrailValue           decimal.Decimal `json:"trailValue"`
	TrailStart           decimal.Decimal `json:"trailStart"`
	Status               string          `json:"status"`
	ReduceOnly           bool            `json:"reduceOnly"`
	RetryUntilFilled     bool            `json:"retryUntilFilled"`
	CancelLimitOnTrigger bool            `json:"cancelLimitOnTrigger"`
	Error                string          `json:"error"`
	CreatedAt            time.Time       `json:"createdAt"`
	TriggeredAt          *time.Time      `json:"triggeredAt"`
}

type Fill struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	TradeID       int64           `json:"tradeId"`
	Market        string          `json:"market"`
	Future        string          `json:"future"`
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	Side          core.Side       `json:"side"`
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	Fee           decimal.Decimal `json:"fee"`
	FeeCurrency   string          `json:"feeCurrency"`
	FeeRate       decimal.Decimal `json:"feeRate"`
	Liquidity     string          `json:"liquidity"`
	Type          string          `json:"type"`
	Time          time.Time       `json:"time"`
}
