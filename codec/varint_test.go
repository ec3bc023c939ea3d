package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	testCases := []struct {
		value   uint64
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{97, []byte{0x61}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{52560, []byte{0xd0, 0x9a, 0x03}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{math.MaxUint64, []byte{
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0x01,
		}},
	}

	for _, tc := range testCases {
		encoded := AppendUvarint(nil, tc.value)
		require.Equal(t, tc.encoded, encoded)

		value, n, err := Uvarint(encoded)
		require.NoError(t, err)
		require.Equal(t, tc.value, value)
		require.Equal(t, len(encoded), n)
	}
}

func TestUvarintMalformed(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{{
		name: "empty",
		data: nil,
	}, {
		name: "unterminated",
		data: []byte{0x80},
	}, {
		name: "unterminated long",
		data: []byte{0xff, 0xff, 0xff},
	}, {
		name: "non-minimal zero",
		data: []byte{0x80, 0x00},
	}, {
		name: "non-minimal value",
		data: []byte{0xff, 0x00},
	}, {
		name: "non-minimal three bytes",
		data: []byte{0x80, 0x80, 0x00},
	}, {
		name: "over 64 bits",
		data: []byte{
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0x02,
		},
	}, {
		name: "eleven bytes",
		data: []byte{
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0x01,
		},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Uvarint(tc.data)
			require.ErrorIs(t, err, ErrMalformedVarint)
		})
	}
}

func TestUvarintAppend(t *testing.T) {
	buf := AppendUvarint([]byte{0xaa}, 300)
	require.Equal(t, []byte{0xaa, 0xac, 0x02}, buf)
}
