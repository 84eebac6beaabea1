package tiff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZWCompressDecompressRoundTripSmall(t *testing.T) {
	data := []byte("TIFF image file format is defined in this document. TIFF TIFF TIFF.")

	var buf bytes.Buffer
	require.NoError(t, lzwCodec{}.Compress(&buf, data, len(data), 1))

	got, err := lzwCodec{}.Decompress(&buf, len(data), 1)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestLZWCompressDecompressRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, lzwCodec{}.Compress(&buf, nil, 0, 0))

	got, err := lzwCodec{}.Decompress(&buf, 0, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestLZWCompressDecompressRoundTripForcesTableGrowth builds a long,
// deterministically pseudo-random byte stream large enough to push the
// string table through multiple early-change width bumps (511, 1023,
// 2047 entries) and at least one full-table reset, to exercise every
// branch of the encoder's width/reset bookkeeping.
func TestLZWCompressDecompressRoundTripForcesTableGrowth(t *testing.T) {
	data := make([]byte, 40000)
	state := uint32(12345)
	for i := range data {
		state = state*1664525 + 1013904223
		data[i] = byte(state >> 16)
	}

	var buf bytes.Buffer
	require.NoError(t, lzwCodec{}.Compress(&buf, data, len(data), 1))

	got, err := lzwCodec{}.Decompress(&buf, len(data), 1)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestLZWCompressDecompressRoundTripRepeatingRun(t *testing.T) {
	data := bytes.Repeat([]byte{0x2A}, 5000)

	var buf bytes.Buffer
	require.NoError(t, lzwCodec{}.Compress(&buf, data, len(data), 1))

	got, err := lzwCodec{}.Decompress(&buf, len(data), 1)
	require.NoError(t, err)
	require.Equal(t, data, got)
}
