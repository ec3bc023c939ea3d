package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var checksumCases = []struct {
	body        string
	expectedSum string
}{{
	body:        "addr(mkmZxiEcEd8ZqjQWVZuC6so5dFMKEFpN2j)",
	expectedSum: "02wpgw69",
}, {
	body:        "tr(cRhCT5vC5NdnSrQ2Jrah6NPCcth41uT8DWFmA6uD8R4x2ufucnYX)",
	expectedSum: "gwfmkgga",
}, {
	body: "wpkh(02f9308a019258c31049344f85f89d5229b531c845836f99b0" +
		"8601f113bce036f9)",
	expectedSum: "8zl0zxma",
}}

func TestChecksum(t *testing.T) {
	for _, tc := range checksumCases {
		sum, err := Checksum(tc.body)
		require.NoError(t, err)
		require.Equal(t, tc.expectedSum, sum)

		require.True(t, validChecksum(tc.body, sum))
	}
}

func TestChecksumRejectsTampering(t *testing.T) {
	body := checksumCases[0].body
	sum := checksumCases[0].expectedSum

	require.False(t, validChecksum(body, "00000000"))
	require.False(t, validChecksum(body, sum[:7]))
	require.False(t, validChecksum(body+" ", sum))
}

func TestChecksumInvalidCharacter(t *testing.T) {
	_, err := Checksum("pkh(\x01)")
	require.Error(t, err)
}
