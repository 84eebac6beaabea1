package tiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCyclesAreDetected(t *testing.T) {
	c := newIfdCycles()

	require.NoError(t, c.insertNext(0x20, 0x800, true), "non-existing link is valid")
	assert.Error(t, c.insertNext(0x800, 0x20, true), "cycle must be detected")
}

func TestReflectiveCycle(t *testing.T) {
	c := newIfdCycles()

	assert.Error(t, c.insertNext(0x20, 0x20, true), "self-referential cycle must be detected")
}

func TestLateCycle(t *testing.T) {
	c := newIfdCycles()

	require.NoError(t, c.insertNext(0x20, 0x40, true))
	require.NoError(t, c.insertNext(0x60, 0x80, true))
	require.NoError(t, c.insertNext(0x80, 0x20, true))

	assert.Error(t, c.insertNext(0x40, 0x60, true))
}

func TestOddCycle(t *testing.T) {
	c := newIfdCycles()

	require.NoError(t, c.insertNext(0x20, 0x40, true))
	require.NoError(t, c.insertNext(0x60, 0x80, true))
	require.NoError(t, c.insertNext(0x80, 0x20, true))

	assert.Error(t, c.insertNext(0x40, 0x80, true))
}

func TestRepeatedIdenticalEdgeIsNotACycle(t *testing.T) {
	c := newIfdCycles()

	require.NoError(t, c.insertNext(0x20, 0x40, true))
	assert.NoError(t, c.insertNext(0x20, 0x40, true), "revisiting the same IFD with the same next pointer is not a cycle")
}
