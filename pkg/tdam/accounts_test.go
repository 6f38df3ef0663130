package tdam

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer old-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"securitiesAccount": {"accountId": "123456789", "type": "MARGIN"}},
			{"securitiesAccount": {"accountId": "987654321", "type": "CASH"}}
		]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	accounts, err := c.GetAccounts(context.Background())
	require.NoError(t, err)

	require.Len(t, accounts, 2)
	assert.Equal(t, "123456789", accounts[0].AccountID())
	assert.Equal(t, "CASH", accounts[1].Type())
}

func TestClient_GetOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/123456789/orders", r.URL.Path)
		assert.Equal(t, "WORKING", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`[{"orderId": 4711, "status": "WORKING", "orderType": "LIMIT", "enteredTime": "2019-08-22T14:30:00+0000"}]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	orders, err := c.GetOrders(context.Background(), "123456789", "WORKING")
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, int64(4711), orders[0].OrderID())
	assert.Equal(t, "LIMIT", orders[0].OrderType())
	assert.Equal(t, "WORKING", orders[0].Status())
}

func TestClient_GetOrders_RequiresAccount(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")

	_, err := c.GetOrders(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestClient_PlaceOrder(t *testing.T) {
	order := map[string]any{
		"orderType":         "LIMIT",
		"session":           "NORMAL",
		"duration":          "DAY",
		"price":             "200.00",
		"orderStrategyType": "SINGLE",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/123456789/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var got map[string]any
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "LIMIT", got["orderType"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	require.NoError(t, c.PlaceOrder(context.Background(), "123456789", order))
}

func TestClient_PlaceOrder_InvalidArguments(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")

	err := c.PlaceOrder(context.Background(), "", map[string]any{"orderType": "MARKET"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = c.PlaceOrder(context.Background(), "123", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
