// SPDX-License-Identifier: GPL-3.0-or-later

package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withHostOrder runs fn pretending the host byte order is little-endian
// (when little is true) or big-endian, then restores the real value.
func withHostOrder(t *testing.T, little bool, fn func()) {
	t.Helper()
	saved := hostIsLittle
	hostIsLittle = little
	defer func() { hostIsLittle = saved }()
	fn()
}

func TestDetectLittleEndian(t *testing.T) {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], 0x12345678)
	assert.Equal(t, buf[0] == 0x78, detectLittleEndian())
	assert.Equal(t, detectLittleEndian(), IsLittleEndianHost())
}

func TestSwap(t *testing.T) {
	assert.Equal(t, uint8(0xab), Swap(uint8(0xab)))
	assert.Equal(t, uint16(0x3412), Swap(uint16(0x1234)))
	assert.Equal(t, uint32(0x78563412), Swap(uint32(0x12345678)))
	assert.Equal(t, uint64(0xefcdab8967452301), Swap(uint64(0x0123456789abcdef)))

	// signed values swap their two's complement representation
	assert.Equal(t, int16(-2), Swap(int16(-257)))
	assert.Equal(t, int32(0x010000ff), Swap(int32(-16777215)))
}

func TestRoundTrip(t *testing.T) {
	for _, little := range []bool{true, false} {
		withHostOrder(t, little, func() {
			for _, v := range []uint8{0, 1, 0x7f, 0x80, 0xff} {
				assert.Equal(t, v, HostToNetwork(NetworkToHost(v)))
				assert.Equal(t, v, NetworkToHost(HostToNetwork(v)))
			}
			for _, v := range []uint16{0, 1, 0x1234, 0xff00, 0xffff} {
				assert.Equal(t, v, HostToNetwork(NetworkToHost(v)))
				assert.Equal(t, v, NetworkToHost(HostToNetwork(v)))
			}
			for _, v := range []int32{0, -1, 0x12345678, -0x7fffffff} {
				assert.Equal(t, v, HostToNetwork(NetworkToHost(v)))
				assert.Equal(t, v, NetworkToHost(HostToNetwork(v)))
			}
			for _, v := range []uint64{0, 1, 0x0123456789abcdef, ^uint64(0)} {
				assert.Equal(t, v, HostToNetwork(NetworkToHost(v)))
				assert.Equal(t, v, NetworkToHost(HostToNetwork(v)))
			}
		})
	}
}

func TestHostToNetworkPretendedOrder(t *testing.T) {
	withHostOrder(t, true, func() {
		assert.Equal(t, uint16(0x3412), HostToNetwork(uint16(0x1234)))
	})
	withHostOrder(t, false, func() {
		assert.Equal(t, uint16(0x1234), HostToNetwork(uint16(0x1234)))
	})
}

func TestBigEndianMemoryLayout(t *testing.T) {
	value := FromHost(uint32(0x01020304))

	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], value.Raw())
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf[:])

	binary.NativeEndian.PutUint32(buf[:], value.AsLittleEndian())
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf[:])

	assert.Equal(t, uint32(0x01020304), value.AsHostEndian())
	assert.Equal(t, uint32(0x01020304), value.Host())
	assert.Equal(t, value.Raw(), value.AsBigEndian())

	// the views do not modify the stored value
	assert.Equal(t, uint32(0x01020304), value.Host())
}

func TestFromRaw(t *testing.T) {
	raw := binary.NativeEndian.Uint16([]byte{0x00, 0x50})
	assert.Equal(t, uint16(80), FromRaw(raw).Host())
	assert.Equal(t, FromHost(uint16(80)), FromRaw(raw))
}

func TestSwapBytes(t *testing.T) {
	cases := []struct {
		// input is the buffer to swap
		input []byte

		// expect is the expected buffer after the swap
		expect []byte

		// err is the expected error
		err error
	}{{
		input:  []byte{0x01},
		expect: []byte{0x01},
	}, {
		input:  []byte{0x01, 0x02},
		expect: []byte{0x02, 0x01},
	}, {
		input:  []byte{0x01, 0x02, 0x03, 0x04},
		expect: []byte{0x04, 0x03, 0x02, 0x01},
	}, {
		input:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
		expect: []byte{8, 7, 6, 5, 4, 3, 2, 1},
	}, {
		input:  []byte{0x01, 0x02, 0x03},
		expect: []byte{0x01, 0x02, 0x03},
		err:    ErrUnsupportedSize,
	}, {
		input:  []byte{},
		expect: []byte{},
		err:    ErrUnsupportedSize,
	}}

	for _, tc := range cases {
		err := SwapBytes(tc.input)
		if tc.err != nil {
			require.ErrorIs(t, err, tc.err)
		} else {
			require.NoError(t, err)
		}
		assert.Equal(t, tc.expect, tc.input)
	}
}
