package gcollect_test

import (
	"testing"

	"github.com/b-macker/naab/internal/gcollect"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/stretchr/testify/require"
)

func TestCollectReclaimsUnreachableCycleExactlyOnce(t *testing.T) {
	c := gcollect.New(1000)
	c.SetRoots(func() []*runtime.Value { return nil })

	a := runtime.List(nil)
	a.List = append(a.List, a) // self-referential cycle
	c.Track(a)

	collected := c.Collect()
	require.Equal(t, 1, collected)
	require.Equal(t, 1, c.TotalCollected())
}

func TestCollectDoesNotReclaimReachableValues(t *testing.T) {
	c := gcollect.New(1000)
	a := runtime.List(nil)
	a.List = append(a.List, a)
	c.Track(a)
	c.SetRoots(func() []*runtime.Value { return []*runtime.Value{a} })

	collected := c.Collect()
	require.Equal(t, 0, collected)
	require.Equal(t, 0, c.TotalCollected())
	require.Len(t, a.List, 1, "reachable cycle must not be severed")
}

func TestNotifyAllocTriggersCollectionAtThreshold(t *testing.T) {
	c := gcollect.New(3)
	collections := 0
	c.SetRoots(func() []*runtime.Value { collections++; return nil })

	c.NotifyAlloc()
	c.NotifyAlloc()
	require.Equal(t, 0, collections)
	c.NotifyAlloc()
	require.Equal(t, 1, collections)
}

func TestCollectCountsTwoIndependentCyclesSeparately(t *testing.T) {
	c := gcollect.New(1000)
	c.SetRoots(func() []*runtime.Value { return nil })

	a, b := runtime.List(nil), runtime.List(nil)
	a.List = append(a.List, a)
	b.List = append(b.List, b)
	c.Track(a)
	c.Track(b)

	require.Equal(t, 2, c.Collect())
}
