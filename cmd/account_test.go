package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountsBody = `[
	{"securitiesAccount": {"accountId": "123456789", "type": "MARGIN", "currentBalances": {"liquidationValue": 25431.5}}},
	{"securitiesAccount": {"accountId": "987654321", "type": "CASH"}}
]`

func TestAccountCmd_List(t *testing.T) {
	server := serve(t, http.StatusOK, accountsBody, func(r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
	})

	out, err := execute(newAccountCmd(authOptions(server.URL)))
	require.NoError(t, err)

	assert.Contains(t, out, "123456789")
	assert.Contains(t, out, "MARGIN")
	assert.Contains(t, out, "25431.50")
	assert.Contains(t, out, "987654321")
}

func TestAccountCmd_ListJSON(t *testing.T) {
	server := serve(t, http.StatusOK, accountsBody, nil)
	opts := authOptions(server.URL)
	opts.jsonMode = true

	out, err := execute(newAccountCmd(opts))
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 2)
}

func TestAccountCmd_Empty(t *testing.T) {
	server := serve(t, http.StatusOK, `[]`, nil)

	out, err := execute(newAccountCmd(authOptions(server.URL)))
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts found")
}

func TestAccountCmd_PublicModeRejected(t *testing.T) {
	calls := 0
	server := serve(t, http.StatusOK, accountsBody, func(r *http.Request) { calls++ })

	_, err := execute(newAccountCmd(publicOptions(server.URL)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires authentication")
	assert.Zero(t, calls)
}

func TestAccountOrdersCmd(t *testing.T) {
	server := serve(t, http.StatusOK, `[{"orderId": 4711, "status": "WORKING", "orderType": "LIMIT", "enteredTime": "2019-08-22T14:30:00+0000"}]`, func(r *http.Request) {
		assert.Equal(t, "/accounts/123456789/orders", r.URL.Path)
		assert.Equal(t, "WORKING", r.URL.Query().Get("status"))
	})

	out, err := execute(newAccountCmd(authOptions(server.URL)), "orders", "123456789", "--status", "WORKING")
	require.NoError(t, err)

	assert.Contains(t, out, "4711")
	assert.Contains(t, out, "LIMIT")
}

func TestAccountOrdersCmd_None(t *testing.T) {
	server := serve(t, http.StatusOK, `[]`, nil)

	out, err := execute(newAccountCmd(authOptions(server.URL)), "orders", "123456789")
	require.NoError(t, err)
	assert.Contains(t, out, "No orders for account 123456789")
}
