package tdam

import (
	"context"
	"fmt"
	"net/url"
)

// GetAccounts lists the accounts linked to the authenticated user.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	if err := c.requireAuth("get accounts"); err != nil {
		return nil, err
	}

	body, err := c.Get(ctx, c.endpoints.Accounts(), nil)
	if err != nil {
		return nil, err
	}

	var accounts []Account
	if err := decodeJSON(body, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetOrders lists the orders of one account. status filters by order status
// (e.g. WORKING, FILLED) when non-empty.
func (c *Client) GetOrders(ctx context.Context, accountID, status string) ([]Order, error) {
	if err := c.requireAuth("get orders"); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w: accountID is required", ErrInvalidArgument)
	}

	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}

	body, err := c.Get(ctx, c.endpoints.AccountOrders(accountID), params)
	if err != nil {
		return nil, err
	}

	var orders []Order
	if err := decodeJSON(body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PlaceOrder submits order as-is to the account's orders endpoint. The
// payload is not validated here; the API rejects malformed orders.
func (c *Client) PlaceOrder(ctx context.Context, accountID string, order map[string]any) error {
	if err := c.requireAuth("place order"); err != nil {
		return err
	}
	if accountID == "" {
		return fmt.Errorf("%w: accountID is required", ErrInvalidArgument)
	}
	if len(order) == 0 {
		return fmt.Errorf("%w: order payload is empty", ErrInvalidArgument)
	}

	_, err := c.Post(ctx, c.endpoints.AccountOrders(accountID), order)
	return err
}
