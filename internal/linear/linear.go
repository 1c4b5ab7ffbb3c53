// Package linear implements the doubly-linked, contiguous-block
// allocator from spec.md §4.1: first/best/worst fit placement with
// boundary coalescing on free.
//
// Grounded algorithmically on original_source/src/MemoryAllocator.cpp.
// The C++ original links Mem_Block nodes by raw pointer; per the
// teacher's own idiom for this problem (biscuit/src/mem/mem.go's
// Physmem_t, an arena of Physpg_t pages threaded by integer index
// instead of pointer — see Design Notes §9 "arena plus integer
// indices"), blocks here live in a flat slice and are linked by index,
// which keeps the whole block list bounds-checkable and lets freed slots
// be recycled.
package linear

import (
	"fmt"
	"strings"

	"memsim/internal/allocator"
	"memsim/internal/idtable"
	"memsim/internal/numeric"
	"memsim/internal/stats"
)

const nilSlot = -1

// block is one node of the allocator's block list.
type block struct {
	id      int
	start   uint64
	size    uint64 // actual block size
	reqSize uint64 // requested size, for internal-fragmentation accounting
	free    bool
	next    int
	prev    int
}

// Stats is the linear allocator's summary statistics (spec.md §4.1
// "display / stats"), laid out in the same order as
// original_source/src/MemoryAllocator.cpp::get_statistics.
type Stats struct {
	TotalMemory             uint64
	UsedMemory              uint64
	InternalFragmentation   uint64
	ExternalFragmentPercent float64
	AllocationSuccessRate   float64
	UtilizationPercent      float64
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Total memory: %d\n"+
			"Used memory: %d\n"+
			"Internal fragmentation: %d\n"+
			"External fragmentation: %.0f%%\n"+
			"Allocation success rate: %.2f%%\n"+
			"Memory utilization: %.2f%%\n",
		s.TotalMemory, s.UsedMemory, s.InternalFragmentation,
		s.ExternalFragmentPercent, s.AllocationSuccessRate, s.UtilizationPercent)
}

// Allocator is the linear, contiguous-block allocator.
type Allocator struct {
	totalSize uint64
	arena     []block
	free      []int // recycled arena slots
	head      int
	nextID    int
	ids       *idtable.Table[int] // allocation id -> arena index

	totalAttempts         stats.Counter
	successfulAllocations stats.Counter
}

// New returns an uninitialized allocator. Call Init before use.
func New() *Allocator {
	return &Allocator{head: nilSlot, ids: idtable.New[int]()}
}

// Init discards all prior state and installs a single free block
// covering [0, size). size == 0 yields an empty allocator.
func (a *Allocator) Init(size uint64) {
	a.totalSize = size
	a.arena = a.arena[:0]
	a.free = a.free[:0]
	a.head = nilSlot
	a.nextID = 1
	a.ids = idtable.New[int]()
	a.totalAttempts = 0
	a.successfulAllocations = 0

	if size == 0 {
		return
	}
	idx := a.newSlot(block{start: 0, size: size, free: true, next: nilSlot, prev: nilSlot})
	a.head = idx
}

func (a *Allocator) newSlot(b block) int {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.arena[idx] = b
		return idx
	}
	a.arena = append(a.arena, b)
	return len(a.arena) - 1
}

func (a *Allocator) freeSlot(idx int) {
	a.free = append(a.free, idx)
}

// Allocate reserves size bytes using algo. It returns the new
// allocation's id, or allocator.NoFit on failure (size == 0 or no block
// fits). Every call with a nonzero size, successful or not, counts toward
// the attempt total; a zero-size call is rejected before it is counted.
// The success rate reported by Stats divides successes by attempts.
func (a *Allocator) Allocate(size uint64, algo allocator.Algo) int {
	if size == 0 {
		return allocator.NoFit
	}
	a.totalAttempts.Inc()

	chosen := nilSlot
	for cur := a.head; cur != nilSlot; cur = a.arena[cur].next {
		b := &a.arena[cur]
		if !b.free || b.size < size {
			continue
		}
		switch algo {
		case allocator.BestFit:
			if chosen == nilSlot || b.size < a.arena[chosen].size {
				chosen = cur
			}
		case allocator.WorstFit:
			if chosen == nilSlot || b.size > a.arena[chosen].size {
				chosen = cur
			}
		default: // FirstFit and any unrecognized strategy
			chosen = cur
		}
		if algo != allocator.BestFit && algo != allocator.WorstFit {
			break
		}
	}

	if chosen == nilSlot {
		return allocator.NoFit
	}

	if a.arena[chosen].size > size {
		remainderStart := a.arena[chosen].start + size
		remainderSize := a.arena[chosen].size - size
		newIdx := a.newSlot(block{
			start: remainderStart,
			size:  remainderSize,
			free:  true,
			next:  a.arena[chosen].next,
			prev:  chosen,
		})
		if nxt := a.arena[chosen].next; nxt != nilSlot {
			a.arena[nxt].prev = newIdx
		}
		a.arena[chosen].next = newIdx
		a.arena[chosen].size = size
	}

	id := a.nextID
	a.nextID++
	a.arena[chosen].free = false
	a.arena[chosen].id = id
	a.arena[chosen].reqSize = size
	a.ids.Set(id, chosen)
	a.successfulAllocations.Inc()
	return id
}

// Deallocate releases the block with the given id. Unknown ids are a
// silent no-op (spec.md §4.1).
func (a *Allocator) Deallocate(id int) {
	idx, ok := a.ids.Get(id)
	if !ok {
		return
	}
	b := &a.arena[idx]
	b.free = true
	b.id = 0
	b.reqSize = 0
	a.ids.Del(id)

	// Coalesce with the next block first, then the previous block, so
	// that at most one of the two neighbors ever survives as the
	// merged node (matches original_source/src/MemoryAllocator.cpp's
	// deallocate ordering).
	if nxt := b.next; nxt != nilSlot && a.arena[nxt].free {
		nb := &a.arena[nxt]
		b.size += nb.size
		b.next = nb.next
		if b.next != nilSlot {
			a.arena[b.next].prev = idx
		}
		a.freeSlot(nxt)
	}
	if prv := b.prev; prv != nilSlot && a.arena[prv].free {
		pb := &a.arena[prv]
		pb.size += b.size
		pb.next = b.next
		if pb.next != nilSlot {
			a.arena[pb.next].prev = prv
		}
		a.freeSlot(idx)
	}
}

// GetAddress returns the start address of id, or allocator.NoAddress if
// id is unknown.
func (a *Allocator) GetAddress(id int) uint64 {
	idx, ok := a.ids.Get(id)
	if !ok {
		return allocator.NoAddress
	}
	return a.arena[idx].start
}

// Display renders the block list in ascending address order.
func (a *Allocator) Display() string {
	var b strings.Builder
	for cur := a.head; cur != nilSlot; cur = a.arena[cur].next {
		blk := a.arena[cur]
		status := "FREE"
		if !blk.free {
			status = fmt.Sprintf("USED (id=%d)", blk.id)
		}
		fmt.Fprintf(&b, "[0x%04X - 0x%04X] %s\n", blk.start, blk.start+blk.size-1, status)
	}
	return b.String()
}

// Stats computes the allocator's summary statistics from the current
// block list.
func (a *Allocator) Stats() string {
	return a.snapshot().String()
}

func (a *Allocator) snapshot() Stats {
	var totalFree, used, internalFrag, largestFree uint64
	for cur := a.head; cur != nilSlot; cur = a.arena[cur].next {
		blk := a.arena[cur]
		if blk.free {
			totalFree += blk.size
			largestFree = numeric.Max(largestFree, blk.size)
		} else {
			used += blk.size
			internalFrag += blk.size - blk.reqSize
		}
	}

	var extFrag float64
	if totalFree > 0 {
		extFrag = float64(totalFree-largestFree) / float64(totalFree) * 100.0
	}
	var utilization float64
	if a.totalSize > 0 {
		utilization = float64(used) / float64(a.totalSize) * 100.0
	}
	var successRate float64
	if a.totalAttempts > 0 {
		successRate = float64(a.successfulAllocations) / float64(a.totalAttempts) * 100.0
	}

	return Stats{
		TotalMemory:             a.totalSize,
		UsedMemory:              used,
		InternalFragmentation:   internalFrag,
		ExternalFragmentPercent: extFrag,
		AllocationSuccessRate:   successRate,
		UtilizationPercent:      utilization,
	}
}

var _ allocator.Allocator = (*Allocator)(nil)
