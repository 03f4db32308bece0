package polyglot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionGroupsConsecutiveIndependentBlocksTogether(t *testing.T) {
	blocks := []BlockInfo{
		{Index: 0, StmtIndex: 0, Writes: "a"},
		{Index: 1, StmtIndex: 1, Writes: "b"},
	}
	batches := Partition(blocks)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Groups, 1)
	require.ElementsMatch(t, []int{0, 1}, batches[0].Groups[0])
}

func TestPartitionSeparatesBlocksWithAReadAfterWriteConflict(t *testing.T) {
	blocks := []BlockInfo{
		{Index: 0, StmtIndex: 0, Writes: "a"},
		{Index: 1, StmtIndex: 1, Reads: []string{"a"}},
	}
	batches := Partition(blocks)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Groups, 2, "conflicting blocks must land in separate groups")
}

func TestPartitionSplitsOnAGapOfTwoOrMoreIntervalStatements(t *testing.T) {
	blocks := []BlockInfo{
		{Index: 0, StmtIndex: 0},
		{Index: 1, StmtIndex: 3}, // two statements in between
	}
	batches := Partition(blocks)
	require.Len(t, batches, 2, "a gap of >= 2 intervening statements starts a new batch")
}

func TestPartitionDoesNotSplitOnASingleInterveningStatement(t *testing.T) {
	blocks := []BlockInfo{
		{Index: 0, StmtIndex: 0},
		{Index: 1, StmtIndex: 2}, // one statement in between
	}
	batches := Partition(blocks)
	require.Len(t, batches, 1)
}

func TestConflictsDetectsWriteAfterWrite(t *testing.T) {
	a := BlockInfo{Writes: "x"}
	b := BlockInfo{Writes: "x"}
	require.True(t, conflicts(a, b))
}

func TestConflictsDetectsWriteAfterRead(t *testing.T) {
	a := BlockInfo{Reads: []string{"x"}}
	b := BlockInfo{Writes: "x"}
	require.True(t, conflicts(a, b))
}

func TestConflictsFalseWhenDisjoint(t *testing.T) {
	a := BlockInfo{Reads: []string{"x"}, Writes: "y"}
	b := BlockInfo{Reads: []string{"z"}, Writes: "w"}
	require.False(t, conflicts(a, b))
}

func TestPartitionHandlesThreeMutuallyConflictingBlocksAsThreeGroups(t *testing.T) {
	blocks := []BlockInfo{
		{Index: 0, StmtIndex: 0, Writes: "a"},
		{Index: 1, StmtIndex: 1, Writes: "a"},
		{Index: 2, StmtIndex: 2, Writes: "a"},
	}
	batches := Partition(blocks)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Groups, 3)
}
