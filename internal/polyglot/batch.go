package polyglot

// BlockInfo describes one top-level polyglot block for the dependency
// analysis: its position among a program's top-level
// statements, the variables it reads (its bound-variable list), and the
// single variable its result is assigned to (empty if its value is
// discarded).
type BlockInfo struct {
	Index     int // identifies this block in the caller's own block list
	StmtIndex int // position of the owning statement in source order
	Reads     []string
	Writes    string
}

// Batch is a sequential group of Groups produced by Partition.
type Batch struct {
	Groups [][]int // each inner slice is a set of block Indexes that may run concurrently
}

// Partition implements parallel-batch dependency analysis: blocks
// are first split into Batches wherever two consecutive blocks have a gap
// of two or more intervening statements, then within each batch greedily
// grouped so that every group's members are pairwise free of RAW/WAW/WAR
// conflicts and may run concurrently; groups within and across batches
// still execute in the sequential order they were formed.
func Partition(blocks []BlockInfo) []Batch {
	var batches []Batch
	var current []BlockInfo

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, Batch{Groups: buildGroups(current)})
		current = nil
	}

	for i, b := range blocks {
		if i > 0 {
			intervening := b.StmtIndex - blocks[i-1].StmtIndex - 1
			if intervening >= 2 {
				flush()
			}
		}
		current = append(current, b)
	}
	flush()
	return batches
}

// buildGroups greedily assigns each block to the first existing group it
// doesn't conflict with any member of, or starts a new group.
func buildGroups(blocks []BlockInfo) [][]int {
	var groupIdx [][]int
	var groupBlocks [][]BlockInfo
	for _, b := range blocks {
		placed := false
		for gi, members := range groupBlocks {
			conflict := false
			for _, other := range members {
				if conflicts(other, b) {
					conflict = true
					break
				}
			}
			if !conflict {
				groupBlocks[gi] = append(groupBlocks[gi], b)
				groupIdx[gi] = append(groupIdx[gi], b.Index)
				placed = true
				break
			}
		}
		if !placed {
			groupBlocks = append(groupBlocks, []BlockInfo{b})
			groupIdx = append(groupIdx, []int{b.Index})
		}
	}
	return groupIdx
}

// conflicts reports a RAW, WAW, or WAR dependency between two blocks,
// order-independent (the caller only needs to know they cannot run
// concurrently, not which direction the dependency runs).
func conflicts(a, b BlockInfo) bool {
	if a.Writes != "" && contains(b.Reads, a.Writes) {
		return true // b reads what a writes
	}
	if b.Writes != "" && contains(a.Reads, b.Writes) {
		return true // a reads what b writes
	}
	if a.Writes != "" && b.Writes != "" && a.Writes == b.Writes {
		return true // both write the same variable
	}
	return false
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
