package ftx

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ftx-rest/internal/core"
)

type OrderHistoryQuery struct {
	Market    string
	Side      core.Side
	OrderType core.OrderType
	StartTime time.Time
	EndTime   time.Time
}

type ConditionalOrderHistoryQuery struct {
	Market    string
	Side      core.Side
	Type      core.ConditionalType
	OrderType core.OrderType
	StartTime time.Time
	EndTime   time.Time
}

type OrderRequest struct {
	Market string
	Side   core.Side
	// Type defaults to limit.
	Type  core.OrderType
	Price decimal.Decimal
	Size  decimal.Decimal

	ReduceOnly bool
	IOC        bool
	PostOnly   bool
	ClientID   string
}

type ConditionalOrderRequest struct {
	Market string
	Side   core.Side
	Size   decimal.Decimal
	Type   core.ConditionalType

	// LimitPrice turns a stop or take-profit into a limit order once
	// triggered. Nil means market.
	LimitPrice   *decimal.Decimal
	TriggerPrice *decimal.Decimal
	TrailValue   *decimal.Decimal

	ReduceOnly bool
	// KeepLimitOnTrigger leaves resting limit orders in place when the
	// trigger fires. The exchange default cancels them.
	KeepLimitOnTrigger bool
}

// ModifyOrderRequest targets an order by exactly one of OrderID or
// ClientOrderID and changes at most one of Price or Size.
type ModifyOrderRequest struct {
	OrderID       string
	ClientOrderID string
	Price         *decimal.Decimal
	Size          *decimal.Decimal
	NewClientID   string
}

type CancelOrdersRequest struct {
	Market                string
	ConditionalOrdersOnly bool
	LimitOrdersOnly       bool
}

type placeOrderBody struct {
	Market     string       `json:"market"`
	Side       core.Side    `json:"side"`
	Price      *json.Number `json:"price"`
	Size       json.Number  `json:"size"`
	Type       string       `json:"type"`
	ReduceOnly bool         `json:"reduceOnly"`
	IOC        bool         `json:"ioc"`
	PostOnly   bool         `json:"postOnly"`
	ClientID   *string      `json:"clientId"`
}

type conditionalOrderBody struct {
	Market               string       `json:"market"`
	Side                 core.Side    `json:"side"`
	TriggerPrice         *json.Number `json:"triggerPrice,omitempty"`
	Size                 json.Number  `json:"size"`
	ReduceOnly           bool         `json:"reduceOnly"`
	Type                 string       `json:"type"`
	CancelLimitOnTrigger bool         `json:"cancelLimitOnTrigger"`
	OrderPrice           *json.Number `json:"orderPrice,omitempty"`
	TrailValue           *json.Number `json:"trailValue,omitempty"`
}

type modifyOrderBody struct {
	Size     *json.Number `json:"size,omitempty"`
	Price    *json.Number `json:"price,omitempty"`
	ClientID *string      `json:"clientId,omitempty"`
}

type cancelOrdersBody struct {
	Market                *string `json:"market"`
	ConditionalOrdersOnly bool    `json:"conditionalOrdersOnly"`
	LimitOrdersOnly       bool    `json:"limitOrdersOnly"`
}

func (c *Client) GetOpenOrders(ctx context.Context, market string) ([]Order, error) {
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	var out []Order
	if err := c.get(ctx, "orders", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrderHistory(ctx context.Context, q OrderHistoryQuery) ([]Order, error) {
	if !q.StartTime.IsZero() && !q.EndTime.IsZero() && q.EndTime.Before(q.StartTime) {
		return nil, invalid("get_order_history", "end before start")
	}
	params := url.Values{}
	if q.Market != "" {
		params.Set("market", q.Market)
	}
	if q.Side != "" {
		params.Set("side", string(q.Side))
	}
	if q.OrderType != "" {
		params.Set("orderType", string(q.OrderType))
	}
	setTime(params, "start_time", q.StartTime)
	setTime(params, "end_time", q.EndTime)

	var out []Order
	if err := c.get(ctx, "orders/history", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetConditionalOrders(ctx context.Context, market string) ([]ConditionalOrder, error) {
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	var out []ConditionalOrder
	if err := c.get(ctx, "conditional_orders", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetConditionalOrderHistory(ctx context.Context, q ConditionalOrderHistoryQuery) ([]ConditionalOrder, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, invalid("get_conditional_order_history", "unknown type %q", q.Type)
	}
	if !q.StartTime.IsZero() && !q.EndTime.IsZero() && q.EndTime.Before(q.StartTime) {
		return nil, invalid("get_conditional_order_history", "end before start")
	}
	params := url.Values{}
	if q.Market != "" {
		params.Set("market", q.Market)
	}
	if q.Side != "" {
		params.Set("side", string(q.Side))
	}
	if q.Type != "" {
		params.Set("type", q.Type.WireName())
	}
	if q.OrderType != "" {
		params.Set("orderType", string(q.OrderType))
	}
	setTime(params, "start_time", q.StartTime)
	setTime(params, "end_time", q.EndTime)

	var out []ConditionalOrder
	if err := c.get(ctx, "conditional_orders/history", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var out Order
	if req.Type == "" {
		req.Type = core.Limit
	}
	if err := validateOrderRequest(req); err != nil {
		return out, err
	}
	body := placeOrderBody{
		Market:     req.Market,
		Side:       req.Side,
		Size:       decimalNumber(req.Size),
		Type:       string(req.Type),
		ReduceOnly: req.ReduceOnly,
		IOC:        req.IOC,
		PostOnly:   req.PostOnly,
	}
	if req.Type == core.Limit {
		price := decimalNumber(req.Price)
		body.Price = &price
	}
	if req.ClientID != "" {
		clientID := req.ClientID
		body.ClientID = &clientID
	}
	err := c.post(ctx, "orders", body, &out)
	return out, err
}

func validateOrderRequest(req OrderRequest) error {
	const op = "place_order"
	if strings.TrimSpace(req.Market) == "" {
		return invalid(op, "market is required")
	}
	if !req.Side.Valid() {
		return invalid(op, "side must be buy or sell, got %q", req.Side)
	}
	if !req.Type.Valid() {
		return invalid(op, "type must be limit or market, got %q", req.Type)
	}
	if !req.Size.IsPositive() {
		return invalid(op, "size must be > 0")
	}
	if req.Type == core.Limit && !req.Price.IsPositive() {
		return invalid(op, "limit orders need a price > 0")
	}
	return nil
}

func (c *Client) PlaceConditionalOrder(ctx context.Context, req ConditionalOrderRequest) (ConditionalOrder, error) {
	var out ConditionalOrder
	if err := validateConditionalOrderRequest(req); err != nil {
		return out, err
	}
	body := conditionalOrderBody{
		Market:               req.Market,
		Side:                 req.Side,
		Size:                 decimalNumber(req.Size),
		ReduceOnly:           req.ReduceOnly,
		Type:                 req.Type.WireName(),
		CancelLimitOnTrigger: !req.KeepLimitOnTrigger,
		TriggerPrice:         optionalNumber(req.TriggerPrice),
		OrderPrice:           optionalNumber(req.LimitPrice),
		TrailValue:           optionalNumber(req.TrailValue),
	}
	err := c.post(ctx, "conditional_orders", body, &out)
	return out, err
}

func validateConditionalOrderRequest(req ConditionalOrderRequest) error {
	const op = "place_conditional_order"
	if !req.Type.Valid() {
		return invalid(op, "type must be one of stop, take_profit, trailing_stop, got %q", req.Type)
	}
	if req.Type.NeedsTrigger() && req.TriggerPrice == nil {
		return invalid(op, "%s orders need a trigger price", req.Type)
	}
	if req.Type == core.TrailingStop {
		if req.TriggerPrice != nil {
			return invalid(op, "trailing stops cannot take a trigger price")
		}
		if req.TrailValue == nil {
			return invalid(op, "trailing stops need a trail value")
		}
	}
	if strings.TrimSpace(req.Market) == "" {
		return invalid(op, "market is required")
	}
	if !req.Side.Valid() {
		return invalid(op, "side must be buy or sell, got %q", req.Side)
	}
	if !req.Size.IsPositive() {
		return invalid(op, "size must be > 0")
	}
	return nil
}

func (c *Client) ModifyOrder(ctx context.Context, req ModifyOrderRequest) (Order, error) {
	var out Order
	if err := validateModifyOrderRequest(req); err != nil {
		return out, err
	}
	path := "orders/" + req.OrderID + "/modify"
	if req.OrderID == "" {
		path = "orders/by_client_id/" + req.ClientOrderID + "/modify"
	}
	body := modifyOrderBody{
		Size:  optionalNumber(req.Size),
		Price: optionalNumber(req.Price),
	}
	if req.NewClientID != "" {
		clientID := req.NewClientID
		body.ClientID = &clientID
	}
	err := c.post(ctx, path, body, &out)
	return out, err
}

func validateModifyOrderRequest(req ModifyOrderRequest) error {
	const op = "modify_order"
	if (req.OrderID == "") == (req.ClientOrderID == "") {
		return invalid(op, "exactly one of order id or client order id must be given")
	}
	if req.Price != nil && req.Size != nil {
		return invalid(op, "modify either price or size, not both")
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return invalid(op, "price must be > 0")
	}
	if req.Size != nil && !req.Size.IsPositive() {
		return invalid(op, "size must be > 0")
	}
	return nil
}

// CancelOrder cancels one order by exchange id. The result is the server's
// acknowledgement text, e.g. "Order queued for cancellation".
func (c *Client) CancelOrder(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", invalid("cancel_order", "order id is required")
	}
	var out string
	err := c.delete(ctx, "orders/"+orderID, nil, &out)
	return out, err
}

// CancelOrders cancels every open order, optionally restricted to one market
// or to one order family.
func (c *Client) CancelOrders(ctx context.Context, req CancelOrdersRequest) (string, error) {
	if req.ConditionalOrdersOnly && req.LimitOrdersOnly {
		return "", invalid("cancel_orders", "conditional-only and limit-only are exclusive")
	}
	body := cancelOrdersBody{
		ConditionalOrdersOnly: req.ConditionalOrdersOnly,
		LimitOrdersOnly:       req.LimitOrdersOnly,
	}
	if req.Market != "" {
		market := req.Market
		body.Market = &market
	}
	var out string
	err := c.delete(ctx, "orders", body, &out)
	return out, err
}

func optionalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := decimalNumber(*d)
	return &n
}
