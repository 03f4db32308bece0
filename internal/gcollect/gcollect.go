// Package gcollect implements the cycle-collecting garbage collector:
// the runtime uses reference counting conceptually for every structured
// value, and a periodic mark-and-sweep severs cycles that pure
// refcounting cannot reclaim on its own, rooting from the environment
// chain and a tracked-values list.
package gcollect

import (
	"sync"

	"github.com/b-macker/naab/internal/runtime"
)

// RootsFunc returns every Value directly reachable from the running
// program's roots (the current environment chain, call-stack locals,
// etc.) at the moment a collection runs. The evaluator supplies this so
// gcollect never needs to know the evaluator's shape.
type RootsFunc func() []*runtime.Value

// Collector tracks every structured (list/dict/struct) Value the
// evaluator allocates and periodically identifies cycles unreachable from
// the program's roots.
type Collector struct {
	mu        sync.Mutex
	threshold int
	allocated int

	tracked []*runtime.Value
	// youngStart indexes the first value tracked since the previous
	// collection; automatic collections treat those as roots because the
	// evaluator may still hold them only in native locals, not yet bound
	// into any environment.
	youngStart int
	roots      RootsFunc

	totalCollected int
}

// New creates a Collector that triggers a collection every threshold
// allocations (default 1000).
func New(threshold int) *Collector {
	if threshold <= 0 {
		threshold = 1000
	}
	return &Collector{threshold: threshold}
}

// SetRoots installs the callback used to gather GC roots. Must be called
// before the first NotifyAlloc/Collect.
func (c *Collector) SetRoots(f RootsFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roots = f
}

// Track registers a newly constructed list/dict/struct/range value as a
// candidate for cycle collection.
func (c *Collector) Track(v *runtime.Value) {
	if v == nil {
		return
	}
	c.mu.Lock()
	c.tracked = append(c.tracked, v)
	c.mu.Unlock()
}

// NotifyAlloc increments the allocation counter and triggers a collection
// once it crosses the configured threshold, resetting the counter
// afterward.
func (c *Collector) NotifyAlloc() {
	c.mu.Lock()
	c.allocated++
	trigger := c.allocated >= c.threshold
	if trigger {
		c.allocated = 0
	}
	c.mu.Unlock()
	if trigger {
		c.collect(true)
	}
}

// Collect runs an immediate mark-and-sweep, also exposed to user programs
// via the `gc_collect()` builtin. It returns the
// number of distinct unreachable cycles severed in this pass.
func (c *Collector) Collect() int { return c.collect(false) }

// collect performs one mark-and-sweep. protectYoung additionally roots
// every value tracked since the previous collection, which is how the
// threshold-triggered path avoids reclaiming values mid-construction.
func (c *Collector) collect(protectYoung bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var roots []*runtime.Value
	if c.roots != nil {
		roots = c.roots()
	}

	reachable := make(map[*runtime.Value]bool)
	var mark func(v *runtime.Value)
	mark = func(v *runtime.Value) {
		if v == nil || reachable[v] {
			return
		}
		reachable[v] = true
		v.Traverse(mark)
	}
	for _, r := range roots {
		mark(r)
	}
	if protectYoung && c.youngStart < len(c.tracked) {
		for _, v := range c.tracked[c.youngStart:] {
			mark(v)
		}
	}

	var survivors, unreachable []*runtime.Value
	for _, v := range c.tracked {
		if reachable[v] {
			survivors = append(survivors, v)
		} else {
			unreachable = append(unreachable, v)
		}
	}
	c.tracked = survivors
	c.youngStart = len(c.tracked)

	collected := countComponents(unreachable)
	sever(unreachable)
	c.totalCollected += collected
	return collected
}

// TotalCollected reports the cumulative number of cycles collected over
// the Collector's lifetime.
func (c *Collector) TotalCollected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCollected
}

// countComponents groups vals into connected components using the edges
// Value.Traverse exposes (list elements, dict values, struct fields),
// treating them as undirected for component purposes — two values that
// reference each other, directly or through a chain, belong to the same
// cycle regardless of which one is the "parent".
func countComponents(vals []*runtime.Value) int {
	if len(vals) == 0 {
		return 0
	}
	index := make(map[*runtime.Value]int, len(vals))
	parent := make([]int, len(vals))
	for i, v := range vals {
		index[v] = i
		parent[i] = i
	}
	var find func(i int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for i, v := range vals {
		v.Traverse(func(child *runtime.Value) {
			if j, ok := index[child]; ok {
				union(i, j)
			}
		})
	}
	roots := make(map[int]bool)
	for i := range vals {
		roots[find(i)] = true
	}
	return len(roots)
}

// sever breaks every strong edge an unreachable value holds, so that once
// this pass's own references are dropped, the host runtime's allocator can
// reclaim the whole component once this pass's own references drop.
func sever(vals []*runtime.Value) {
	for _, v := range vals {
		switch v.Kind {
		case runtime.KList:
			v.List = nil
		case runtime.KDict:
			v.Dict = runtime.NewOrderedDict()
		case runtime.KStruct:
			if v.Struct != nil {
				v.Struct.Fields = runtime.NewOrderedDict()
			}
		}
	}
}
