package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	testDescriptor = "wpkh(02f9308a019258c31049344f85f89d5229b531c845" +
		"836f99b08601f113bce036f9)"
	testChecksum = "8zl0zxma"
	testEncoded  = "04252702f9308a019258c31049344f85f89d5229b531c8458" +
		"36f99b08601f113bce036f9"
)

func runCommand(t *testing.T, cmd *cobra.Command,
	args ...string) (string, error) {

	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestEncodeCommand(t *testing.T) {
	out, err := runCommand(t, newEncodeCommand(), testDescriptor)
	require.NoError(t, err)
	require.Equal(t, testEncoded, out)
}

func TestEncodeCommandInvalidDescriptor(t *testing.T) {
	_, err := runCommand(t, newEncodeCommand(), "wpkh(nonsense)")
	require.Error(t, err)
}

func TestDecodeCommand(t *testing.T) {
	out, err := runCommand(t, newDecodeCommand(), testEncoded)
	require.NoError(t, err)
	require.Equal(t, testDescriptor+"#"+testChecksum, out)
}

func TestDecodeCommandInvalidHex(t *testing.T) {
	_, err := runCommand(t, newDecodeCommand(), "zz")
	require.Error(t, err)
}

func TestDecodeCommandTruncated(t *testing.T) {
	_, err := runCommand(t, newDecodeCommand(), "0425")
	require.Error(t, err)
}

func TestRoundTripCommands(t *testing.T) {
	encoded, err := runCommand(t, newEncodeCommand(), testDescriptor)
	require.NoError(t, err)

	decoded, err := runCommand(t, newDecodeCommand(), encoded)
	require.NoError(t, err)
	require.Equal(t, testDescriptor+"#"+testChecksum, decoded)
}
