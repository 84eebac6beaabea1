package tiff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackBitsDecodeKnownFixture(t *testing.T) {
	input := []byte{
		0xFE, 0xAA, 0x02, 0x80, 0x00, 0x2A,
		0xFD, 0xAA, 0x03, 0x80, 0x00, 0x2A, 0x22,
		0xF7, 0xAA,
	}
	want := []byte{
		0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A,
		0xAA, 0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0x22,
		0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA,
	}

	got, err := packBitsCodec{}.Decompress(bytes.NewReader(input), 24, 1)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Len(t, got, 24)
}

func TestPackBitsCompressDecompressRoundTrip(t *testing.T) {
	data := []byte{1, 1, 1, 1, 2, 3, 4, 5, 5, 5, 5, 5, 5, 5, 5}

	var buf bytes.Buffer
	require.NoError(t, packBitsCodec{}.Compress(&buf, data, len(data), 1))

	got, err := packBitsCodec{}.Decompress(&buf, len(data), 1)
	require.NoError(t, err)
	require.Equal(t, data, got)
}
