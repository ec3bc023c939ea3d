package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Key material used across the package tests. The extended keys are
// well-known test vectors and publicly documented example keys.
const (
	testKeyCompressed1 = "02f9308a019258c31049344f85f89d5229b531c84583" +
		"6f99b08601f113bce036f9"
	testKeyCompressed2 = "03a0434d9e47f3c86235477c7b1ae6ae5d3442d49b19" +
		"43c2b752a68e2a47e247c7"
	testKeyCompressed3 = "036d2b085e9e382ed10b69fc311a03f8641ccfff2157" +
		"4de0927513a49d9a688a00"
	testKeyCompressed4 = "02e8445082a72f29b75ca48748a914df60622a609cac" +
		"fce8ed0e35804560741d29"
	testKeyUncompressed = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2d" +
		"ce28d959f2815b16f81798483ada7726a3c4655da4fbfc0e1108a8fd17b4" +
		"48a68554199c47d08ffb10d4b8"
	testKeyXOnly1 = "f9308a019258c31049344f85f89d5229b531c845836f99b086" +
		"01f113bce036f9"
	testKeyXOnly2 = "a0434d9e47f3c86235477c7b1ae6ae5d3442d49b1943c2b752" +
		"a68e2a47e247c7"
	testKeyXOnly3 = "e8445082a72f29b75ca48748a914df60622a609cacfce8ed0e" +
		"35804560741d29"

	testWIFCompressed = "cRhCT5vC5NdnSrQ2Jrah6NPCcth41uT8DWFmA6uD8R4x2" +
		"ufucnYX"
	testWIFCompressedMain = "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7r" +
		"FU73sVHnoWn"
	testWIFUncompressed = "5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTVq" +
		"vbTLvyTJ"

	testXPubMaster = "xpub661MyMwAqRbcFMvuhDygRu1UtxDrQ5Epzugv3AmPMu1t" +
		"jMELT5aJeQQrxEx84a3XFegMz3jY7EdohY3ogWELWhmixQKTFJK1rxXRtP8a" +
		"oWr"
	testXPub1 = "xpub6C9j4wAxxkWN4cq8G4N2mkV6NrGGhnLFCGdh8GsYY1xreEveW" +
		"5YEXJMjDZWLAcnZ26xqVft5FmgBxPixdMGoVQZMdtEJRRADxrn4facoGnx"
	testXPub2 = "xpub6DiYrfRwNnjeX4vHsWMajJVFKrbEEnu8gAW9vDuQzgTWEsEHE" +
		"16sGWeXXUV1LBWQE1yCTmeprSNcqZ3W74hqVdgDbtYHUv3eM4W2TEUhpan"
	testXPub3 = "xpub6DjrnfAyuonMaboEb3ZQZzhQ2ZEgaKV2r64BFmqymZqJqviLT" +
		"e1JzMr2X2RfQF892RH7MyYUbcy77R7pPu1P71xoj8cDUMNhAMGYzKR4noZ"
	testXPub4 = "xpub6DnT4E1fT8VxuAZW29avMjr5i99aYTHBp9d7fiLnpL5t4JEpr" +
		"QqPMbTw7k7rh5tZZ2F5g8PJpssqrZoebzBChaiJrmEvWwUTEMAbHsY39Ge"
	testXPub5 = "xpub6DnediUuY8Pcc6Fej8Yt2ZntPCyFdpbHBkNV7EawesRMbc6i9" +
		"MKKMhKEv4JMMzwDJckaV4czBvNdc6ikwLiZqdUqMd5ZKQGYaQT4cXMeVjf"
	testXPub6 = "xpub6E8mpiqJiVKuJZqxtu5SbHQnwUWWPQpZEy9CVtvfU1gxXZnbb" +
		"9DG2AvZyMHvyVRtUPAEmu6BuRCy4LK2rKMeNr7jQKXsCyFfr1osgFCMYpc"
	testXPub7 = "xpub6ENfRaMWq2UoFy5FrLRMwiEkdgFdMgjEoikR34RBGzhsx8JzA" +
		"kn7fyQeR5odirEwERvmxhSEv7rsmV7nuzjSKKKJHBP2aQZVu3R2d5ERgcw"
	testTPub1 = "tpubDD5cTgxiP4qYJgBgkS6arjQH3GsJEHExFZWvumhNGGe4gBShn" +
		"9u3b4TdpG2DvRg3knNXV7fBdmaw6cH2kKYdk2aXjQZYsnTchA4aFsZWehG"
	testTPub2 = "tpubDE77mtPH9LnL5r2mFHjEXM2KZ6P2YyHcyCtjAXroj9jnQDbwt" +
		"sRim3CoXTv2pQUaJinqoBFAhXguGhZcL4JDVD7JShCnV9MfAfSpke4Ja58"
	testXPrv = "xprv9s21ZrQH143K25QhxbucbDDuQ4naNntJRi4KUfWT7xo4EKsHt2" +
		"QJDu7KXp1A3u7Bi1j8ph3EGsZ9Xvz9dGuVrtHHs7pXeTzjuxBrCmmhgC6"

	testHash32a = "926a54995ca48600920a19bf7bc502caf8bd2cdf59d9f2adc6" +
		"62f02851b741ab"
	testHash32b = "6c60f404f8167a38fc70eaf8aa17ac351023bef86bcb9d1086" +
		"a19afe95bd5333"
	testHash20a = "14af6f1ed2d73b4d3e1ed0b2ab21c27a0f379bc3"
	testHash20b = "aabbccddeeff00112233445566778899aabbccdd"
)

func TestDescriptorRoundTrip(t *testing.T) {
	testCases := []string{
		"pkh(" + testKeyCompressed1 + ")",
		"pkh(" + testKeyUncompressed + ")",
		"pkh(" + testWIFUncompressed + ")",
		"wpkh(" + testKeyCompressed1 + ")",
		"wpkh(" + testWIFCompressedMain + ")",
		"wpkh([d34db33f/48h/0h/0h/2h]" + testXPub1 + "/<0;1>/*)",
		"sh(wpkh([00000001/49h/0h/0h]" + testXPub2 + "/0/*))",
		"sh(wsh(sortedmulti(2,[aaaaaaaa/48h/0h/0h/2h]" + testXPub3 +
			"/0/*,[bbbbbbbb/48h/0h/0h/2h]" + testXPub4 + "/0/*)))",
		"sh(sortedmulti(2," + testXPub1 + "/0/*," + testXPub2 +
			"/0/*))",
		"sh(and_v(v:pk(" + testXPubMaster + "/0/1),older(6)))",
		"wsh(sortedmulti(2," + testKeyCompressed2 + "," +
			testKeyCompressed3 + "," + testKeyCompressed4 + "))",
		"wsh(multi(2,[cafebabe/48h/1h/0h/2h]" + testTPub1 +
			"/0/*,[deadbeef/48h/1h/0h/2h]" + testTPub2 + "/0/*))",
		"wsh(and_v(v:pk([d34db33f/48h/0h/0h/2h]" + testXPub5 +
			"/<0;1>/*),older(52560)))",
		"wsh(andor(pk(" + testXPub6 + "/0/*),older(1000),pk(" +
			testXPub7 + "/0/*)))",
		"wsh(and_n(pk(" + testXPub4 + "/7/*),older(52560)))",
		"wsh(or_d(pk(" + testXPub1 + "/1/*),and_v(v:pkh(" +
			testXPub2 + "/1/*),after(1231488000))))",
		"wsh(thresh(2,pk(" + testXPub3 + "/0/*),s:pk(" + testXPub4 +
			"/0/*),sdv:older(12960)))",
		"wsh(or_b(pk(" + testXPub5 + "/8/*),s:pk(" + testXPub6 +
			"/8/*)))",
		"wsh(and_b(pk(" + testXPub7 + "),a:older(16)))",
		"wsh(t:or_c(pk(" + testXPub1 + "/2/*),v:pk(" + testXPub2 +
			"/2/*)))",
		"wsh(l:and_v(v:pk(" + testXPub3 + "/9/*),after(1024)))",
		"wsh(u:and_v(v:pk(" + testXPub4 + "/9/*),older(1024)))",
		"wsh(or_d(pk(" + testXPub5 + "/2/*),jn:older(10000)))",
		"wsh(c:or_i(pk_k(" + testXPub6 + "/3/*),pk_k(" + testXPub7 +
			"/3/*)))",
		"wsh(or_d(pk([d34db33f/48h/0h/0h/2h]" + testXPub1 +
			"/0/*),c:raw_pkh(" + testHash20a + ")))",
		"wsh(and_v(v:sha256(" + testHash32a + "),and_v(v:hash256(" +
			testHash32b + "),and_v(v:ripemd160(" + testHash20a +
			"),and_v(v:hash160(" + testHash20b + "),pk(" +
			testXPub1 + "/0/*))))))",
		"tr(" + testKeyXOnly1 + ")",
		"tr(" + testWIFCompressed + ")",
		"tr(" + testKeyXOnly2 + ",{pk(" + testKeyXOnly1 + "),{pk(" +
			testKeyXOnly3 + "),older(144)}})",
		"tr([d34db33f/86h/0h/0h]" + testXPub4 + "/<0;1>/*,{pk(" +
			testXPub5 + "/<2;3>/*),multi_a(2," + testKeyXOnly1 +
			"," + testKeyXOnly3 + ")})",
		"tr(" + testXPrv + "/9h/*h)",
		"pk(" + testKeyCompressed1 + ")",
		"multi(1," + testKeyCompressed2 + "," + testKeyCompressed3 +
			")",
	}

	for _, tc := range testCases {
		t.Run(tc[:24], func(t *testing.T) {
			parsed, err := Parse(tc)
			require.NoError(t, err)
			require.Equal(t, tc, parsed.String())
		})
	}
}

// Sugar fragments parse into their canonical expansions and are
// re-sugared when printed.
func TestSugarCanonicalization(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{{
		in:  "wsh(c:pk_k(" + testXPub1 + "))",
		out: "wsh(pk(" + testXPub1 + "))",
	}, {
		in:  "wsh(c:pk_h(" + testXPub1 + "))",
		out: "wsh(pkh(" + testXPub1 + "))",
	}, {
		in:  "wsh(and_v(v:pk(" + testXPub1 + "),1))",
		out: "wsh(tv:pk(" + testXPub1 + "))",
	}, {
		in:  "wsh(or_i(0,pk(" + testXPub1 + ")))",
		out: "wsh(l:pk(" + testXPub1 + "))",
	}, {
		in:  "wsh(or_i(pk(" + testXPub1 + "),0))",
		out: "wsh(u:pk(" + testXPub1 + "))",
	}, {
		in:  "wsh(andor(pk(" + testXPub1 + "),older(10),0))",
		out: "wsh(and_n(pk(" + testXPub1 + "),older(10)))",
	}}

	for _, tc := range testCases {
		parsed, err := Parse(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.out, parsed.String())

		again, err := Parse(tc.out)
		require.NoError(t, err)
		require.Equal(t, tc.out, again.String())
	}
}

func TestParseChecksum(t *testing.T) {
	body := "wpkh(" + testKeyCompressed1 + ")"

	parsed, err := Parse(body + "#8zl0zxma")
	require.NoError(t, err)

	encoded, err := parsed.Encode()
	require.NoError(t, err)
	require.Equal(t, body+"#8zl0zxma", encoded)

	_, err = Parse(body + "#8zl0zxmq")
	require.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		desc string
	}{{
		name: "empty",
		desc: "",
	}, {
		name: "unknown fragment",
		desc: "frob(" + testKeyCompressed1 + ")",
	}, {
		name: "unbalanced",
		desc: "wpkh(" + testKeyCompressed1,
	}, {
		name: "trailing garbage",
		desc: "wpkh(" + testKeyCompressed1 + "))",
	}, {
		name: "multi in taproot",
		desc: "tr(" + testKeyXOnly1 + ",multi(1," + testKeyXOnly2 +
			"))",
	}, {
		name: "multi_a outside taproot",
		desc: "wsh(multi_a(1," + testKeyCompressed1 + "))",
	}, {
		name: "uncompressed key in wpkh",
		desc: "wpkh(" + testKeyUncompressed + ")",
	}, {
		name: "x-only key in wsh",
		desc: "wsh(pk(" + testKeyXOnly1 + "))",
	}, {
		name: "type error and_v",
		desc: "wsh(and_v(pk(" + testXPub1 + "),older(1)))",
	}, {
		name: "type error thresh",
		desc: "wsh(thresh(1,pk(" + testXPub1 + "),pk(" + testXPub2 +
			")))",
	}, {
		name: "bad wrapper",
		desc: "wsh(x:pk(" + testXPub1 + "))",
	}, {
		name: "wrapper on wrong type",
		desc: "wsh(c:older(1))",
	}, {
		name: "threshold too large",
		desc: "wsh(multi(3," + testKeyCompressed1 + "," +
			testKeyCompressed2 + "))",
	}, {
		name: "locktime zero",
		desc: "wsh(and_v(v:pk(" + testXPub1 + "),older(0)))",
	}, {
		name: "locktime overflow",
		desc: "wsh(and_v(v:pk(" + testXPub1 + "),after(2147483648)))",
	}, {
		name: "nested sh",
		desc: "sh(sh(pk(" + testKeyCompressed1 + ")))",
	}, {
		name: "taproot tree missing brace",
		desc: "tr(" + testKeyXOnly1 + ",{pk(" + testKeyXOnly2 + "))",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.desc)
			require.Error(t, err, tc.desc)
		})
	}
}

func TestParseRecursionDepth(t *testing.T) {
	deep := ""
	for i := 0; i < 300; i++ {
		deep += "and_v(v:pk(" + testXPub1 + "),"
	}
	deep += "older(1)"
	for i := 0; i < 300; i++ {
		deep += ")"
	}

	_, err := Parse("wsh(" + deep + ")")
	require.Error(t, err)
	require.Contains(t, err.Error(), "recursion depth")
}
