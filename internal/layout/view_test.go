package layout

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewFirstLayoutBeforeMeasurement(t *testing.T) {
	v := NewView(cfgWithWidth(160))
	v.SetHops(sampleHops(3))

	snap := v.Snapshot()
	require.Equal(t, []int{1, 1, 1}, snap.Layout.RowLengths())

	v.Resize(500)
	snap = v.Snapshot()
	assert.Equal(t, []int{3}, snap.Layout.RowLengths())
	assert.Equal(t, 500.0, snap.Width)
}

func TestViewExpansionSurvivesResize(t *testing.T) {
	v := NewView(cfgWithWidth(160))
	v.SetHops(sampleHops(8))
	v.Resize(500)

	require.True(t, v.Toggle(4))
	v.Resize(1000)

	k, ok := v.Expanded()
	require.True(t, ok)
	assert.Equal(t, 4, k)

	snap := v.Snapshot()
	require.NotNil(t, snap.Expanded)
	assert.Equal(t, 4, *snap.Expanded)
	assert.Equal(t, 4, snap.Layout.Nodes[*snap.Expanded].Index)
}

func TestViewToggleTwiceCollapses(t *testing.T) {
	v := NewView(DefaultConfig())
	v.SetHops(sampleHops(2))

	require.True(t, v.Toggle(1))
	require.True(t, v.Toggle(1))
	_, ok := v.Expanded()
	assert.False(t, ok)

	require.True(t, v.Toggle(0))
	require.True(t, v.Toggle(1))
	k, _ := v.Expanded()
	assert.Equal(t, 1, k)

	v.Collapse()
	assert.Nil(t, v.Snapshot().Expanded)
}

func TestViewToggleOutOfRange(t *testing.T) {
	v := NewView(DefaultConfig())
	v.SetHops(sampleHops(2))
	assert.False(t, v.Toggle(2))
	assert.False(t, v.Toggle(-1))
	_, ok := v.Expanded()
	assert.False(t, ok)
}

func TestViewShrinkingHopsClearsStaleExpansion(t *testing.T) {
	v := NewView(DefaultConfig())
	v.SetHops(sampleHops(5))
	require.True(t, v.Toggle(2))

	v.SetHops(sampleHops(4))
	k, ok := v.Expanded()
	require.True(t, ok, "element still exists at index 2")
	assert.Equal(t, 2, k)

	v.SetHops(sampleHops(2))
	_, ok = v.Expanded()
	assert.False(t, ok)
}

func TestViewCopiesCallerHops(t *testing.T) {
	hops := sampleHops(3)
	v := NewView(DefaultConfig())
	v.SetHops(hops)
	hops[0].Name = "changed"

	assert.Equal(t, "hop-0", v.Snapshot().Hops[0].Name)
}

func TestViewNegativeWidth(t *testing.T) {
	v := NewView(DefaultConfig())
	v.SetHops(sampleHops(2))
	v.Resize(-300)
	assert.Zero(t, v.Width())
	assert.Equal(t, 1, v.Snapshot().Layout.RowCapacity)
}

func TestViewConcurrentUse(t *testing.T) {
	v := NewView(DefaultConfig())
	v.SetHops(sampleHops(6))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v.Resize(float64(100 * i))
			v.Toggle(i % 6)
			_ = v.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Len(t, v.Snapshot().Layout.Nodes, 6)
}
