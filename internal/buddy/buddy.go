// Package buddy implements the power-of-two buddy allocator from
// spec.md §4.2: split on allocate, merge on free, free lists indexed by
// order.
//
// Grounded algorithmically on original_source/src/BuddyAllocator.cpp.
// As with internal/linear, free-list nodes are held in a flat arena and
// linked by index rather than pointer, directly following
// biscuit/src/mem/mem.go's Physmem_t free-list-by-index pattern — the
// same structure the teacher uses for its own per-order physical page
// free lists (see Design Notes §9).
package buddy

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"memsim/internal/allocator"
	"memsim/internal/idtable"
	"memsim/internal/numeric"
)

const nilSlot = -1

// block is one free-list node or allocated block record.
type block struct {
	addr uint64
	size uint64
	id   int
	next int // next free-list node at the same order, or nilSlot
}

// Stats mirrors original_source/src/BuddyAllocator.cpp::get_statistics.
type Stats struct {
	TotalMemory    uint64
	AllocatedCount int
	FreeBlocks     int
	FreeMemory     uint64
	UsedMemory     uint64
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Total Memory      : %d\n"+
			"Allocated Blocks  : %d\n"+
			"Free Blocks       : %d\n"+
			"Free Memory       : %d\n"+
			"Used Memory       : %d\n",
		s.TotalMemory, s.AllocatedCount, s.FreeBlocks, s.FreeMemory, s.UsedMemory)
}

// Allocator is the buddy allocator.
type Allocator struct {
	totalSize uint64
	maxOrder  int
	freeLists []int // head arena index per order, nilSlot if empty
	arena     []block
	recycled  []int
	nextID    int
	allocated *idtable.Table[int] // id -> arena index
}

// New returns an uninitialized allocator. Call Init before use.
func New() *Allocator {
	return &Allocator{allocated: idtable.New[int]()}
}

// orderOf returns k such that 2^k == size. size must be a power of two.
// Named and kept distinct from inlined bit tricks to match
// original_source/src/BuddyAllocator.cpp's order_of helper, used by both
// Allocate (to find req_order) and Deallocate (to find each merge step's
// free list).
func orderOf(size uint64) int {
	return int(numeric.Log2(size))
}

// Init discards all prior state and installs a single free block
// covering [0, total_size), where total_size is size rounded up to the
// next power of two. If size cannot be represented as a power of two
// (NextPow2 overflow), an error is logged and the allocator is left
// empty (spec.md §7: "Buddy
// init size exceeding representable power of two" — print error, leave
// allocator empty).
func (a *Allocator) Init(size uint64) {
	a.arena = a.arena[:0]
	a.recycled = a.recycled[:0]
	a.nextID = 1
	a.allocated = idtable.New[int]()

	total := numeric.NextPow2(size)
	if total == 0 {
		log.Error().Uint64("size", size).
			Msg("buddy: init size exceeds the largest power of two; allocator left empty")
		a.totalSize = 0
		a.maxOrder = 0
		a.freeLists = nil
		return
	}
	a.totalSize = total
	a.maxOrder = orderOf(total)
	a.freeLists = make([]int, a.maxOrder+1)
	for i := range a.freeLists {
		a.freeLists[i] = nilSlot
	}
	idx := a.newSlot(block{addr: 0, size: total, next: nilSlot})
	a.freeLists[a.maxOrder] = idx
}

func (a *Allocator) newSlot(b block) int {
	if n := len(a.recycled); n > 0 {
		idx := a.recycled[n-1]
		a.recycled = a.recycled[:n-1]
		a.arena[idx] = b
		return idx
	}
	a.arena = append(a.arena, b)
	return len(a.arena) - 1
}

func (a *Allocator) freeSlot(idx int) {
	a.recycled = append(a.recycled, idx)
}

func (a *Allocator) popFree(order int) int {
	idx := a.freeLists[order]
	a.freeLists[order] = a.arena[idx].next
	a.arena[idx].next = nilSlot
	return idx
}

func (a *Allocator) pushFree(order, idx int) {
	a.arena[idx].next = a.freeLists[order]
	a.freeLists[order] = idx
}

// Allocate reserves size bytes, rounded up to the next power of two. The
// placement algorithm parameter is accepted for interface compatibility
// with allocator.Allocator but ignored, exactly as
// original_source/src/BuddyAllocator.cpp's allocate does: buddy placement
// is fully determined by order, there is no fit strategy to choose
// between.
func (a *Allocator) Allocate(size uint64, _ allocator.Algo) int {
	if size == 0 {
		return allocator.NoFit
	}
	req := numeric.NextPow2(size)
	if req == 0 || req > a.totalSize {
		return allocator.NoFit
	}
	reqOrder := orderOf(req)

	order := reqOrder
	for order <= a.maxOrder && a.freeLists[order] == nilSlot {
		order++
	}
	if order > a.maxOrder {
		return allocator.NoFit
	}

	idx := a.popFree(order)
	for order > reqOrder {
		order--
		half := a.arena[idx].size / 2
		buddyIdx := a.newSlot(block{addr: a.arena[idx].addr + half, size: half, next: nilSlot})
		a.arena[idx].size = half
		a.pushFree(order, buddyIdx)
	}

	id := a.nextID
	a.nextID++
	a.arena[idx].id = id
	a.allocated.Set(id, idx)
	return id
}

// Deallocate releases the block with the given id, merging with its
// buddy repeatedly while the buddy is free. Unknown ids are a silent
// no-op.
func (a *Allocator) Deallocate(id int) {
	idx, ok := a.allocated.Get(id)
	if !ok {
		return
	}
	a.allocated.Del(id)

	addr := a.arena[idx].addr
	size := a.arena[idx].size
	a.freeSlot(idx)

	for size < a.totalSize {
		buddyAddr := addr ^ size
		order := orderOf(size)
		if order >= a.maxOrder {
			break
		}

		prev := nilSlot
		cur := a.freeLists[order]
		for cur != nilSlot && a.arena[cur].addr != buddyAddr {
			prev = cur
			cur = a.arena[cur].next
		}
		if cur == nilSlot {
			break
		}

		if prev == nilSlot {
			a.freeLists[order] = a.arena[cur].next
		} else {
			a.arena[prev].next = a.arena[cur].next
		}
		a.freeSlot(cur)

		addr = numeric.Min(addr, buddyAddr)
		size <<= 1
	}

	mergedIdx := a.newSlot(block{addr: addr, size: size, next: nilSlot})
	a.pushFree(orderOf(size), mergedIdx)
}

// GetAddress returns the start address of id, or allocator.NoAddress if
// id is unknown.
func (a *Allocator) GetAddress(id int) uint64 {
	idx, ok := a.allocated.Get(id)
	if !ok {
		return allocator.NoAddress
	}
	return a.arena[idx].addr
}

// Display renders every order's free list, lowest order first.
func (a *Allocator) Display() string {
	var b strings.Builder
	b.WriteString("--- Free Lists ---\n")
	for order := 0; order < len(a.freeLists); order++ {
		fmt.Fprintf(&b, "Order %d (%d): ", order, uint64(1)<<uint(order))
		for cur := a.freeLists[order]; cur != nilSlot; cur = a.arena[cur].next {
			fmt.Fprintf(&b, "[Addr:%d, Size:%d] -> ", a.arena[cur].addr, a.arena[cur].size)
		}
		b.WriteString("nil\n")
	}
	return b.String()
}

// Stats computes the allocator's summary statistics from the current
// free lists and allocation table.
func (a *Allocator) Stats() string {
	var freeMem uint64
	var freeBlocks int
	for order := range a.freeLists {
		for cur := a.freeLists[order]; cur != nilSlot; cur = a.arena[cur].next {
			freeMem += a.arena[cur].size
			freeBlocks++
		}
	}
	return Stats{
		TotalMemory:    a.totalSize,
		AllocatedCount: a.allocated.Len(),
		FreeBlocks:     freeBlocks,
		FreeMemory:     freeMem,
		UsedMemory:     a.totalSize - freeMem,
	}.String()
}

var _ allocator.Allocator = (*Allocator)(nil)
