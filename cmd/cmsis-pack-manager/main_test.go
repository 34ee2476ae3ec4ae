package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgsNoArgsExits(t *testing.T) {
	_, _, exit := parseArgs([]string{"cmsis-pack-manager"})
	require.True(t, exit)
}

func TestParseArgsPlainCommand(t *testing.T) {
	name, help, exit := parseArgs([]string{"cmsis-pack-manager", "update"})
	require.Equal(t, "update", name)
	require.False(t, help)
	require.False(t, exit)
}

func TestParseArgsHelpCommand(t *testing.T) {
	name, help, exit := parseArgs([]string{"cmsis-pack-manager", "help", "update"})
	require.Equal(t, "update", name)
	require.True(t, help)
	require.False(t, exit)
}

func TestVersionCommandPrintsBuildVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := &versionCommand{}
	env := &Env{Stdout: &out, Stderr: &out}
	require.NoError(t, cmd.Run(env, nil))
	require.Contains(t, out.String(), buildVersion)
}

func TestResolveDashToEmpty(t *testing.T) {
	require.Equal(t, "", resolveDashToEmpty("-"))
	require.Equal(t, "devices.json", resolveDashToEmpty("devices.json"))
}

func TestConfigRunUnknownCommandReturnsNonzero(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &Config{Args: []string{"cmsis-pack-manager", "bogus"}, Stdout: &out, Stderr: &errOut}
	require.Equal(t, 1, c.Run())
	require.Contains(t, errOut.String(), "no such command")
}
