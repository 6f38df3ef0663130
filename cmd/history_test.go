package cmd

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyBody = `{
	"candles": [
		{"open": 154.89, "high": 158.85, "low": 154.23, "close": 157.92, "volume": 37039737, "datetime": 1546408800000},
		{"open": 143.98, "high": 145.72, "low": 142.0, "close": 142.19, "volume": 91312195, "datetime": 1546495200000}
	],
	"symbol": "AAPL",
	"empty": false
}`

func fixedNow() time.Time { return time.Date(2019, 8, 20, 16, 0, 0, 0, time.UTC) }

func TestHistoryCmd_Daily(t *testing.T) {
	server := serve(t, http.StatusOK, historyBody, func(r *http.Request) {
		assert.Equal(t, "/marketdata/AAPL/pricehistory", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "year", q.Get("periodType"))
		assert.Equal(t, "daily", q.Get("frequencyType"))
		assert.Equal(t, "1", q.Get("frequency"))
		assert.Equal(t, "false", q.Get("needExtendedHoursData"))
		assert.Equal(t, "1546300800000", q.Get("startDate"))
		assert.Equal(t, "1548892800000", q.Get("endDate"))
	})

	out, err := execute(newHistoryCmd(publicOptions(server.URL)), "aapl", "--from", "2019-01-01", "--to", "2019-01-31")
	require.NoError(t, err)

	assert.Contains(t, out, "2019-01-02")
	assert.Contains(t, out, "157.92")
	assert.Contains(t, out, "142.00")
	assert.Contains(t, out, "91,312,195")
}

func TestHistoryCmd_IntradayDefaultsEndToNow(t *testing.T) {
	server := serve(t, http.StatusOK, historyBody, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "minute", q.Get("frequencyType"))
		assert.Equal(t, "5", q.Get("frequency"))
		assert.Equal(t, "true", q.Get("needExtendedHoursData"))
		assert.Equal(t, "1566316800000", q.Get("endDate"))
	})
	opts := publicOptions(server.URL)
	opts.now = fixedNow

	out, err := execute(newHistoryCmd(opts), "AAPL", "--from", "2019-08-01", "--freq", "5min", "--extended")
	require.NoError(t, err)
	assert.Contains(t, out, "2019-01-02 06:00")
}

func TestHistoryCmd_JSON(t *testing.T) {
	server := serve(t, http.StatusOK, historyBody, nil)
	opts := publicOptions(server.URL)
	opts.jsonMode = true

	out, err := execute(newHistoryCmd(opts), "AAPL", "--from", "2019-01-01", "--to", "2019-01-31")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 157.92, got[0]["close"])
}

func TestHistoryCmd_Empty(t *testing.T) {
	server := serve(t, http.StatusOK, `{"candles": [], "symbol": "NO DICE", "empty": true}`, nil)

	out, err := execute(newHistoryCmd(publicOptions(server.URL)), "NO DICE", "--from", "2019-01-01", "--to", "2019-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "No price history for NO DICE")
}

func TestHistoryCmd_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing from", args: []string{"AAPL"}, wantErr: "--from"},
		{name: "bad from", args: []string{"AAPL", "--from", "01/01/2019"}, wantErr: "invalid --from"},
		{name: "bad to", args: []string{"AAPL", "--from", "2019-01-01", "--to", "tomorrow"}, wantErr: "invalid --to"},
		{name: "bad frequency", args: []string{"AAPL", "--from", "2019-01-01", "--to", "2019-01-31", "--freq", "5d"}, wantErr: "not supported"},
		{name: "reversed dates", args: []string{"AAPL", "--from", "2019-01-31", "--to", "2019-01-01"}, wantErr: "before end date"},
		{name: "intraday too old", args: []string{"AAPL", "--from", "2019-01-01", "--to", "2019-01-31", "--freq", "1min"}, wantErr: "last 30 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := serve(t, http.StatusOK, historyBody, func(r *http.Request) { calls++ })
			opts := publicOptions(server.URL)
			opts.now = fixedNow

			_, err := execute(newHistoryCmd(opts), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, calls)
		})
	}
}
