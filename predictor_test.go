package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorizontalPredictorRGB8SingleRow(t *testing.T) {
	original := []byte{10, 20, 30, 1, 2, 3, 5, 5, 5}
	buf := append([]byte(nil), original...)

	require.NoError(t, HorizontalPredictor(buf, 3, 1, 3, 3, 8, binary.BigEndian))
	diff := func(a, b int) byte { return byte(a - b) }
	expected := []byte{
		10, 20, 30,
		diff(1, 10), diff(2, 20), diff(3, 30),
		diff(5, 1), diff(5, 2), diff(5, 3),
	}
	assert.Equal(t, expected, buf)

	require.NoError(t, RevHorizontalPredictor(buf, 3, 1, 3, 3, 8, binary.BigEndian))
	assert.Equal(t, original, buf)
}

func TestHorizontalPredictorRoundTripMultiRowMultiSample(t *testing.T) {
	original := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		200, 150, 100, 50, 10, 250, 90, 30,
	}
	buf := append([]byte(nil), original...)

	const width, height, samples = 4, 2, 2
	require.NoError(t, HorizontalPredictor(buf, width, height, width, samples, 8, binary.LittleEndian))
	require.NotEqual(t, original, buf)
	require.NoError(t, RevHorizontalPredictor(buf, width, height, width, samples, 8, binary.LittleEndian))
	assert.Equal(t, original, buf)
}

func TestFloatingPointPredictorRoundTrip(t *testing.T) {
	original := []byte{
		0x00, 0x01, 0x02, 0x03,
		0x10, 0x11, 0x12, 0x13,
		0x20, 0x21, 0x22, 0x23,
	}
	buf := append([]byte(nil), original...)

	const width, height, samples, byteLen = 3, 1, 1, 4
	require.NoError(t, FloatingPointPredictor(buf, width, height, width, samples, byteLen))
	require.NoError(t, RevFloatingPointPredictor(buf, width, height, width, samples, byteLen))
	assert.Equal(t, original, buf)
}
