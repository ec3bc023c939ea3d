package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKeyRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		ctx  Context
	}{{
		name: "compressed",
		key:  testKeyCompressed1,
		ctx:  SegwitV0,
	}, {
		name: "uncompressed",
		key:  testKeyUncompressed,
		ctx:  Legacy,
	}, {
		name: "x-only",
		key:  testKeyXOnly1,
		ctx:  Tapscript,
	}, {
		name: "wif compressed",
		key:  testWIFCompressed,
		ctx:  SegwitV0,
	}, {
		name: "wif uncompressed",
		key:  testWIFUncompressed,
		ctx:  Legacy,
	}, {
		name: "xpub bare",
		key:  testXPubMaster,
		ctx:  Legacy,
	}, {
		name: "xpub with origin and path",
		key:  "[d34db33f/44h/0h/0h]" + testXPubMaster + "/1/2",
		ctx:  Legacy,
	}, {
		name: "xpub with wildcard",
		key:  testXPub1 + "/0/*",
		ctx:  SegwitV0,
	}, {
		name: "xpub with hardened wildcard",
		key:  testXPub1 + "/9h/*h",
		ctx:  SegwitV0,
	}, {
		name: "xpub multipath",
		key:  "[d34db33f/48h/0h/0h/2h]" + testXPub1 + "/<0;1>/*",
		ctx:  SegwitV0,
	}, {
		name: "xpub multipath with suffix",
		key:  testXPub1 + "/4h/<0;1;2>/5/*",
		ctx:  SegwitV0,
	}, {
		name: "xprv",
		key:  testXPrv + "/0h/1",
		ctx:  SegwitV0,
	}, {
		name: "tpub",
		key:  testTPub1 + "/0/*",
		ctx:  SegwitV0,
	}, {
		name: "origin without path",
		key:  "[deadbeef]" + testKeyCompressed1,
		ctx:  SegwitV0,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := ParseKey(tc.key, tc.ctx)
			require.NoError(t, err)
			require.Equal(t, tc.key, key.String())
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		ctx  Context
	}{{
		name: "garbage",
		key:  "notakey",
		ctx:  Legacy,
	}, {
		name: "empty",
		key:  "",
		ctx:  Legacy,
	}, {
		name: "x-only outside taproot",
		key:  testKeyXOnly1,
		ctx:  SegwitV0,
	}, {
		name: "uncompressed in segwit",
		key:  testKeyUncompressed,
		ctx:  SegwitV0,
	}, {
		name: "uncompressed wif in segwit",
		key:  testWIFUncompressed,
		ctx:  SegwitV0,
	}, {
		name: "invalid pubkey prefix",
		key: "05f9308a019258c31049344f85f89d5229b531c845836f99b086" +
			"01f113bce036f9",
		ctx: Legacy,
	}, {
		name: "missing origin bracket",
		key:  "[d34db33f" + testKeyCompressed1,
		ctx:  Legacy,
	}, {
		name: "short fingerprint",
		key:  "[d34db3/0h]" + testKeyCompressed1,
		ctx:  Legacy,
	}, {
		name: "path on single key",
		key:  testKeyCompressed1 + "/0/*",
		ctx:  Legacy,
	}, {
		name: "wildcard mid-path",
		key:  testXPub1 + "/*/0",
		ctx:  Legacy,
	}, {
		name: "single multipath branch",
		key:  testXPub1 + "/<0>/*",
		ctx:  Legacy,
	}, {
		name: "two multipath steps",
		key:  testXPub1 + "/<0;1>/<2;3>",
		ctx:  Legacy,
	}, {
		name: "path element overflow",
		key:  testXPub1 + "/2147483648",
		ctx:  Legacy,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseKey(tc.key, tc.ctx)
			require.Error(t, err)
		})
	}
}

func TestParsePath(t *testing.T) {
	path, err := ParsePath("48h/0h/0h/2h")
	require.NoError(t, err)
	require.Equal(t, Path{
		HardenedKeyStart + 48, HardenedKeyStart, HardenedKeyStart,
		HardenedKeyStart + 2,
	}, path)
	require.Equal(t, "/48h/0h/0h/2h", path.String())

	// The apostrophe marker is accepted and canonicalized to "h".
	path, err = ParsePath("44'/1'/0")
	require.NoError(t, err)
	require.Equal(t, "/44h/1h/0", path.String())

	_, err = ParsePath("44x")
	require.Error(t, err)
}
