package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoursCmd(t *testing.T) {
	server := serve(t, http.StatusOK, `{
		"option": {"EQO": {"date": "2019-08-23", "marketType": "OPTION", "product": "EQO", "productName": "equity option", "isOpen": true}},
		"equity": {"EQ": {"date": "2019-08-23", "marketType": "EQUITY", "product": "EQ", "productName": "equity", "isOpen": true}}
	}`, func(r *http.Request) {
		assert.Equal(t, "/marketdata/hours", r.URL.Path)
		assert.Equal(t, "EQUITY,OPTION", r.URL.Query().Get("markets"))
		assert.Equal(t, "2019-08-23", r.URL.Query().Get("date"))
	})

	out, err := execute(newHoursCmd(publicOptions(server.URL)), "equity", "option", "--date", "2019-08-23")
	require.NoError(t, err)

	assert.Contains(t, out, "equity option")
	assert.Contains(t, out, "true")
	assert.Less(t, strings.Index(out, "EQUITY"), strings.Index(out, "OPTION"))
}

func TestHoursCmd_BadDate(t *testing.T) {
	_, err := execute(newHoursCmd(publicOptions("http://localhost")), "equity", "--date", "tomorrow")
	assert.ErrorContains(t, err, "invalid --date")
}

func TestMoversCmd(t *testing.T) {
	server := serve(t, http.StatusOK, `[
		{"symbol": "NVDA", "direction": "up", "change": 0.0612, "last": 172.48, "totalVolume": 23011902}
	]`, func(r *http.Request) {
		assert.Equal(t, "/marketdata/$SPX.X/movers", r.URL.Path)
		assert.Equal(t, "up", r.URL.Query().Get("direction"))
	})

	out, err := execute(newMoversCmd(publicOptions(server.URL)), "$spx.x", "--direction", "up")
	require.NoError(t, err)

	assert.Contains(t, out, "NVDA")
	assert.Contains(t, out, "0.0612")
	assert.Contains(t, out, "172.48")
	assert.Contains(t, out, "23,011,902")
}

func TestMoversCmd_InvalidDirection(t *testing.T) {
	_, err := execute(newMoversCmd(publicOptions("http://localhost")), "$DJI", "--direction", "sideways")
	assert.ErrorContains(t, err, "invalid argument")
}
