package ftx

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftx-rest/internal/core"
)

func TestModifyOrderValidation(t *testing.T) {
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeResult(t, w, map[string]any{"id": 1})
	})

	cases := []struct {
		name string
		req  ModifyOrderRequest
	}{
		{"both ids", ModifyOrderRequest{OrderID: "A", ClientOrderID: "B", Price: decimalPtr("10")}},
		{"no id", ModifyOrderRequest{Price: decimalPtr("10")}},
		{"price and size", ModifyOrderRequest{OrderID: "A", Price: decimalPtr("10"), Size: decimalPtr("5")}},
		{"negative size", ModifyOrderRequest{OrderID: "A", Size: decimalPtr("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.ModifyOrder(context.Background(), tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrValidation)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "modify_order", vErr.Op)
		})
	}
	assert.Empty(t, requests())
}

func TestModifyOrderPaths(t *testing.T) {
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeResult(t, w, map[string]any{"id": 7, "price": 10})
	})
	ctx := context.Background()

	order, err := client.ModifyOrder(ctx, ModifyOrderRequest{OrderID: "123", Price: decimalPtr("10")})
	require.NoError(t, err)
	assert.EqualValues(t, 7, order.ID)
	_, err = client.ModifyOrder(ctx, ModifyOrderRequest{ClientOrderID: "my-order", Size: decimalPtr("0.25"), NewClientID: "next"})
	require.NoError(t, err)
	_, err = client.ModifyOrder(ctx, ModifyOrderRequest{OrderID: "124"})
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "POST", reqs[0].Method)
	assert.Equal(t, "/api/orders/123/modify", reqs[0].RequestURI)
	assert.JSONEq(t, `{"price":10}`, string(reqs[0].Body))
	assert.Equal(t, "/api/orders/by_client_id/my-order/modify", reqs[1].RequestURI)
	assert.JSONEq(t, `{"size":0.25,"clientId":"next"}`, string(reqs[1].Body))
	assert.JSONEq(t, `{}`, string(reqs[2].Body))
}

func TestPlaceConditionalOrderValidation(t *testing.T) {
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeResult(t, w, map[string]any{"id": 1})
	})
	base := ConditionalOrderRequest{Market: "BTC-PERP", Side: core.Sell, Size: mustDecimal("1")}

	cases := []struct {
		name   string
		mutate func(*ConditionalOrderRequest)
	}{
		{"unknown type", func(r *ConditionalOrderRequest) { r.Type = "stop_limit"; r.TriggerPrice = decimalPtr("100") }},
		{"stop without trigger", func(r *ConditionalOrderRequest) { r.Type = core.Stop }},
		{"take profit without trigger", func(r *ConditionalOrderRequest) { r.Type = core.TakeProfit }},
		{"trailing stop with trigger", func(r *ConditionalOrderRequest) {
			r.Type = core.TrailingStop
			r.TriggerPrice = decimalPtr("100")
			r.TrailValue = decimalPtr("5")
		}},
		{"trailing stop without trail", func(r *ConditionalOrderRequest) { r.Type = core.TrailingStop }},
		{"zero size", func(r *ConditionalOrderRequest) {
			r.Type = core.Stop
			r.TriggerPrice = decimalPtr("100")
			r.Size = mustDecimal("0")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := client.PlaceConditionalOrder(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
	assert.Empty(t, requests())
}

func TestPlaceConditionalOrderWireBody(t *testing.T) {
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeResult(t, w, map[string]any{"id": 99, "type": "stop"})
	})
	ctx := context.Background()

	order, err := client.PlaceConditionalOrder(ctx, ConditionalOrderRequest{
		Market:       "BTC-PERP",
		Side:         core.Sell,
		Size:         mustDecimal("1"),
		Type:         core.Stop,
		TriggerPrice: decimalPtr("100"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 99, order.ID)

	_, err = client.PlaceConditionalOrder(ctx, ConditionalOrderRequest{
		Market:             "BTC-PERP",
		Side:               core.Buy,
		Size:               mustDecimal("0.5"),
		Type:               core.TrailingStop,
		TrailValue:         decimalPtr("-5"),
		ReduceOnly:         true,
		KeepLimitOnTrigger: true,
	})
	require.NoError(t, err)

	_, err = client.PlaceConditionalOrder(ctx, ConditionalOrderRequest{
		Market:       "ETH-PERP",
		Side:         core.Sell,
		Size:         mustDecimal("2"),
		Type:         core.TakeProfit,
		TriggerPrice: decimalPtr("4000"),
		LimitPrice:   decimalPtr("3990.5"),
	})
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "/api/conditional_orders", reqs[0].RequestURI)
	assert.JSONEq(t, `{"market":"BTC-PERP","side":"sell","triggerPrice":100,"size":1,"reduceOnly":false,"type":"stop","cancelLimitOnTrigger":true}`, string(reqs[0].Body))
	assert.JSONEq(t, `{"market":"BTC-PERP","side":"buy","size":0.5,"reduceOnly":true,"type":"trailingStop","cancelLimitOnTrigger":false,"trailValue":-5}`, string(reqs[1].Body))
	assert.JSONEq(t, `{"market":"ETH-PERP","side":"sell","triggerPrice":4000,"size":2,"reduceOnly":false,"type":"takeProfit","cancelLimitOnTrigger":true,"orderPrice":3990.5}`, string(reqs[2].Body))

	body := decodeBody(t, reqs[0].Body)
	_, isNumber := body["triggerPrice"].(json.Number)
	assert.True(t, isNumber, "trigger price must be a JSON number")
}

func TestPlaceOrder(t *testing.T) {
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeResult(t, w, map[string]any{"id": 5, "market": "ETH/USD", "status": "new", "price": nil})
	})
	ctx := context.Background()

	order, err := client.PlaceOrder(ctx, OrderRequest{
		Market: "ETH/USD",
		Side:   core.Buy,
		Price:  mustDecimal("4800"),
		Size:   mustDecimal("0.006"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", order.Status)
	assert.True(t, order.Price.IsZero())

	_, err = client.PlaceOrder(ctx, OrderRequest{
		Market:   "ETH/USD",
		Side:     core.Sell,
		Type:     core.Market,
		Size:     mustDecimal("1"),
		IOC:      true,
		ClientID: "cid-1",
	})
	require.NoError(t, err)

	_, err = client.PlaceOrder(ctx, OrderRequest{Market: "ETH/USD", Side: core.Buy, Size: mustDecimal("1")})
	assert.ErrorIs(t, err, core.ErrValidation, "limit without price")
	_, err = client.PlaceOrder(ctx, OrderRequest{Market: "ETH/USD", Side: "hold", Price: mustDecimal("1"), Size: mustDecimal("1")})
	assert.ErrorIs(t, err, core.ErrValidation, "bad side")

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/orders", reqs[0].RequestURI)
	assert.JSONEq(t, `{"market":"ETH/USD","side":"buy","price":4800,"size":0.006,"type":"limit","reduceOnly":false,"ioc":false,"postOnly":false,"clientId":null}`, string(reqs[0].Body))
	assert.JSONEq(t, `{"market":"ETH/USD","side":"sell","price":null,"size":1,"type":"market","reduceOnly":false,"ioc":true,"postOnly":false,"clientId":"cid-1"}`, string(reqs[1].Body))
}

func TestCancelOrders(t *testing.T) {
	client, requests := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeResult(t, w, "Order queued for cancellation")
	})
	ctx := context.Background()

	msg, err := client.CancelOrder(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Order queued for cancellation", msg)

	_, err = client.CancelOrders(ctx, CancelOrdersRequest{Market: "BTC-PERP", LimitOrdersOnly: true})
	require.NoError(t, err)
	_, err = client.CancelOrders(ctx, CancelOrdersRequest{})
	require.NoError(t, err)

	_, err = client.CancelOrder(ctx, " ")
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = client.CancelOrders(ctx, CancelOrdersRequest{ConditionalOrdersOnly: true, LimitOrdersOnly: true})
	assert.ErrorIs(t, err, core.ErrValidation)

	reqs := requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "DELETE", reqs[0].Method)
	assert.Equal(t, "/api/orders/42", reqs[0].RequestURI)
	assert.Empty(t, reqs[0].Body)
	assert.Equal(t, "DELETE", reqs[1].Method)
	assert.JSONEq(t, `{"market":"BTC-PERP","conditionalOrdersOnly":false,"limitOrdersOnly":true}`, string(reqs[1].Body))
	assert.JSONEq(t, `{"market":null,"conditionalOrdersOnly":false,"limitOrdersOnly":false}`, string(reqs[2].Body))
}
