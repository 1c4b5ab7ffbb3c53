package linear

import (
	"testing"

	"github.com/stretchr/testify/require"

	"memsim/internal/allocator"
)

// Scenario 1 from spec.md §8: init memory 1024; malloc 100; malloc 200;
// free 1; malloc 50 on first-fit.
func TestScenarioFirstFitSplitAndReuse(t *testing.T) {
	a := New()
	a.Init(1024)

	id1 := a.Allocate(100, allocator.FirstFit)
	id2 := a.Allocate(200, allocator.FirstFit)
	require.Equal(t, 1, id1)
	require.Equal(t, 2, id2)

	addr1 := a.GetAddress(id1)
	a.Deallocate(id1)

	id3 := a.Allocate(50, allocator.FirstFit)
	require.Equal(t, 3, id3)

	require.Equal(t, addr1, a.GetAddress(id3), "id 3 should reuse id 1's freed start address")
	require.EqualValues(t, 0, a.GetAddress(id3))

	out := a.Display()
	require.Contains(t, out, "[0x0000 - 0x0031] USED (id=3)")
	require.Contains(t, out, "[0x0032 - 0x0063] FREE")
	require.Contains(t, out, "[0x0064 - 0x012B] USED (id=2)")
	require.Contains(t, out, "[0x012C - 0x03FF] FREE")
}

func TestTilingAfterOperations(t *testing.T) {
	a := New()
	a.Init(512)
	a.Allocate(64, allocator.FirstFit)
	a.Allocate(64, allocator.BestFit)
	a.Deallocate(1)
	a.Allocate(32, allocator.WorstFit)

	var total uint64
	for cur := a.head; cur != nilSlot; cur = a.arena[cur].next {
		b := a.arena[cur]
		require.Equal(t, total, b.start, "blocks must tile contiguously in ascending order")
		total += b.size
	}
	require.EqualValues(t, 512, total)
}

func TestNoAdjacentFreeBlocksAfterFree(t *testing.T) {
	a := New()
	a.Init(300)
	id1 := a.Allocate(50, allocator.FirstFit)
	id2 := a.Allocate(50, allocator.FirstFit)
	id3 := a.Allocate(50, allocator.FirstFit)
	a.Deallocate(id1)
	a.Deallocate(id3)
	a.Deallocate(id2)

	count := 0
	prevFree := false
	for cur := a.head; cur != nilSlot; cur = a.arena[cur].next {
		b := a.arena[cur]
		if b.free && prevFree {
			t.Fatal("two adjacent free blocks found after coalescing")
		}
		prevFree = b.free
		count++
	}
	require.Equal(t, 1, count, "fully freeing every block should coalesce into one block")
}

func TestZeroSizeAllocationFails(t *testing.T) {
	a := New()
	a.Init(100)
	require.Equal(t, allocator.NoFit, a.Allocate(0, allocator.FirstFit))
}

func TestDeallocateUnknownIdIsNoop(t *testing.T) {
	a := New()
	a.Init(100)
	a.Deallocate(999) // must not panic
}

func TestInitZeroSizeIsEmpty(t *testing.T) {
	a := New()
	a.Init(0)
	require.Equal(t, allocator.NoFit, a.Allocate(1, allocator.FirstFit))
	require.Equal(t, "", a.Display())
}

func TestBestFitChoosesSmallestSufficientBlock(t *testing.T) {
	a := New()
	a.Init(1000)
	a.Allocate(100, allocator.FirstFit) // id 1: [0,100)
	mid := a.Allocate(300, allocator.FirstFit) // id 2: [100,400)
	a.Allocate(100, allocator.FirstFit) // id 3: [400,500), keeps the mid block's neighbors used
	a.Deallocate(mid)
	// Free blocks: [100,400) size 300 (isolated by used neighbors on both
	// sides) and the tail [500,1000) size 500.

	bestID := a.Allocate(80, allocator.BestFit)
	require.NotEqual(t, allocator.NoFit, bestID)
	require.EqualValues(t, 100, a.GetAddress(bestID), "best fit should choose the smaller of the two sufficient free blocks")
}

func TestAllocationSuccessRateAndUtilization(t *testing.T) {
	a := New()
	a.Init(100)
	a.Allocate(50, allocator.FirstFit)
	a.Allocate(1000, allocator.FirstFit) // fails, still counts as an attempt

	s := a.snapshot()
	require.EqualValues(t, 100, s.TotalMemory)
	require.EqualValues(t, 50, s.UsedMemory)
	require.InDelta(t, 50.0, s.AllocationSuccessRate, 0.001)
	require.InDelta(t, 50.0, s.UtilizationPercent, 0.001)
}

var _ allocator.Allocator = (*Allocator)(nil)
