package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_JSONFlagExists(t *testing.T) {
	jsonOutput = false

	flag := rootCmd.PersistentFlags().Lookup("json")

	require.NotNil(t, flag, "--json flag should exist")
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "Output in JSON format", flag.Usage)
}

func TestRootCmd_JSONFlagShorthand(t *testing.T) {
	flag := rootCmd.PersistentFlags().ShorthandLookup("j")

	require.NotNil(t, flag, "-j shorthand should exist")
	assert.Equal(t, "json", flag.Name)
}

func TestRootCmd_PublicAndLogLevelFlags(t *testing.T) {
	public := rootCmd.PersistentFlags().Lookup("public")
	require.NotNil(t, public)
	assert.Equal(t, "false", public.DefValue)

	level := rootCmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, level)
	assert.Empty(t, level.DefValue)
}

func TestRootCmd_GetJSONMode(t *testing.T) {
	jsonOutput = false
	assert.False(t, GetJSONMode())

	jsonOutput = true
	assert.True(t, GetJSONMode())

	jsonOutput = false
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	defer rootCmd.SetArgs(nil)

	_ = rootCmd.Execute()

	assert.Contains(t, out.String(), "tdam version")
}

func TestRootCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"configure", "quote", "instrument", "history", "options", "hours", "movers", "account", "order"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
