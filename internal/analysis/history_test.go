package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(10)

	for f := 1; f <= 11; f++ {
		require.True(t, h.Push(Sample{Frame: f, Position: Point{X: float64(f)}}))
	}

	samples := h.Samples()
	require.Len(t, samples, 10)
	assert.Equal(t, 2, samples[0].Frame)
	assert.Equal(t, 11, samples[9].Frame)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 11.0, last.Position.X)
}

func TestHistory_RejectsNonIncreasingFrames(t *testing.T) {
	h := NewHistory(3)

	assert.True(t, h.Push(Sample{Frame: 5}))
	assert.False(t, h.Push(Sample{Frame: 5}))
	assert.False(t, h.Push(Sample{Frame: 4}))
	assert.Equal(t, 1, h.Len())
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(3)
	h.Push(Sample{Frame: 1})
	h.Push(Sample{Frame: 2})

	h.Clear()

	assert.Equal(t, 0, h.Len())
	_, ok := h.Last()
	assert.False(t, ok)

	// Frame order restarts after a clear.
	assert.True(t, h.Push(Sample{Frame: 1}))
}

func TestNewHistory_MinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, 1, h.Cap())

	h.Push(Sample{Frame: 1})
	h.Push(Sample{Frame: 2})
	samples := h.Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, 2, samples[0].Frame)
}

func TestHistory_SamplesIsCopy(t *testing.T) {
	h := NewHistory(2)
	h.Push(Sample{Frame: 1, Position: Point{X: 1}})

	s := h.Samples()
	s[0].Position.X = 99

	last, _ := h.Last()
	assert.Equal(t, 1.0, last.Position.X)
}
