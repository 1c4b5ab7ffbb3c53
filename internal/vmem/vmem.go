// Package vmem implements demand-paged virtual memory translation:
// page table, inverted frame table, and LRU/FIFO/CLOCK page
// replacement (spec.md §4.5).
//
// Grounded on original_source/src/VirtualMemory.{h,cpp}; the
// guard-clause ordering of Translate (TLB, then page table, then fault)
// follows the style of biscuit/src/vm/as.go's Userdmap8_inner, which
// checks progressively more expensive fallbacks in the same shape.
package vmem

import (
	"fmt"

	"memsim/internal/cache"
	"memsim/internal/stats"
	"memsim/internal/tlb"
)

// Policy selects which resident page Translate evicts on a page fault
// with no free frame.
type Policy int

const (
	LRU Policy = iota
	FIFO
	CLOCK
)

func (p Policy) String() string {
	switch p {
	case LRU:
		return "LRU"
	case FIFO:
		return "FIFO"
	case CLOCK:
		return "CLOCK"
	default:
		return "?"
	}
}

// pageTableEntry is one virtual page's mapping state.
type pageTableEntry struct {
	valid       bool
	dirty       bool
	referenced  bool
	frameNumber int // -1 if unmapped
	lastAccess  uint64
	loadedTime  uint64
}

// VirtualMemory is the demand-paged translator.
type VirtualMemory struct {
	pageSize     uint64
	virtualSize  uint64
	physicalSize uint64
	totalFrames  int

	pageTable  []pageTableEntry
	frameTable []int // frame -> vpn, or -1 if free

	policy    Policy
	clockHand int

	cache *cache.Hierarchy

	accessCounter stats.Counter
	pageHits      stats.Counter
	pageFaults    stats.Counter
	diskAccesses  stats.Counter
}

// New builds a translator over the given page/virtual/physical
// geometry, consulting h (may be nil) to invalidate cache lines when a
// frame is evicted.
func New(pageSize, virtualSize, physicalSize uint64, policy Policy, h *cache.Hierarchy) *VirtualMemory {
	totalFrames := int(physicalSize / pageSize)
	vm := &VirtualMemory{
		pageSize:     pageSize,
		virtualSize:  virtualSize,
		physicalSize: physicalSize,
		totalFrames:  totalFrames,
		pageTable:    make([]pageTableEntry, virtualSize/pageSize),
		frameTable:   make([]int, totalFrames),
		policy:       policy,
		cache:        h,
	}
	for i := range vm.pageTable {
		vm.pageTable[i].frameNumber = -1
	}
	for i := range vm.frameTable {
		vm.frameTable[i] = -1
	}
	return vm
}

// SetReplacementPolicy changes the page replacement policy. It does not
// reset the CLOCK hand or any page's referenced bit, matching
// original_source/src/VirtualMemory.cpp::set_replacement_policy, so
// switching into CLOCK mid-run inherits whatever referenced bits the
// prior policy left behind.
func (vm *VirtualMemory) SetReplacementPolicy(p Policy) {
	vm.policy = p
}

func (vm *VirtualMemory) findFreeFrame() int {
	for f, occupant := range vm.frameTable {
		if occupant == -1 {
			return f
		}
	}
	return -1
}

// evictPage picks a victim frame per the active policy, invalidates its
// physical range in the cache hierarchy, accounts a disk write if the
// victim was dirty, and tears down its page table entry. It returns the
// freed frame number.
func (vm *VirtualMemory) evictPage() int {
	victimFrame := 0
	switch vm.policy {
	case LRU:
		oldest := ^uint64(0)
		for f, vpn := range vm.frameTable {
			if vpn == -1 {
				continue
			}
			if vm.pageTable[vpn].lastAccess < oldest {
				oldest = vm.pageTable[vpn].lastAccess
				victimFrame = f
			}
		}
	case FIFO:
		oldest := ^uint64(0)
		for f, vpn := range vm.frameTable {
			if vpn == -1 {
				continue
			}
			if vm.pageTable[vpn].loadedTime < oldest {
				oldest = vm.pageTable[vpn].loadedTime
				victimFrame = f
			}
		}
	case CLOCK:
		for {
			f := vm.clockHand
			vm.clockHand = (vm.clockHand + 1) % vm.totalFrames
			vpn := vm.frameTable[f]
			if vpn == -1 {
				victimFrame = f
				break
			}
			if !vm.pageTable[vpn].referenced {
				victimFrame = f
				break
			}
			vm.pageTable[vpn].referenced = false
		}
	}

	victimVPN := vm.frameTable[victimFrame]
	if victimVPN != -1 {
		if vm.cache != nil {
			vm.cache.InvalidatePhysicalRange(uint64(victimFrame)*vm.pageSize, vm.pageSize)
		}
		if vm.pageTable[victimVPN].dirty {
			vm.diskAccesses.Inc()
		}
		vm.pageTable[victimVPN].valid = false
		vm.frameTable[victimFrame] = -1
	}
	return victimFrame
}

// Translate resolves v_addr to a physical address, consulting t first,
// then the page table, and finally handling a page fault. It returns
// the physical address and a human-readable report in the style of
// original_source/src/VirtualMemory.cpp::translate.
func (vm *VirtualMemory) Translate(vAddr uint64, isWrite bool, t *tlb.TLB) (uint64, string) {
	vm.accessCounter.Inc()
	vpn := vAddr / vm.pageSize
	offset := vAddr % vm.pageSize

	if pfn, ok := t.Lookup(vpn); ok {
		vm.pageHits.Inc()
		return pfn*vm.pageSize + offset, "TLB Hit"
	}

	pte := &vm.pageTable[vpn]
	if pte.valid {
		vm.pageHits.Inc()
		pte.lastAccess = uint64(vm.accessCounter)
		pte.referenced = true
		if isWrite {
			pte.dirty = true
		}
		t.Insert(vpn, uint64(pte.frameNumber))
		return uint64(pte.frameNumber)*vm.pageSize + offset, "Page Table Hit"
	}

	vm.pageFaults.Inc()
	vm.diskAccesses.Inc()

	frame := vm.findFreeFrame()
	if frame == -1 {
		frame = vm.evictPage()
	}

	*pte = pageTableEntry{
		valid:       true,
		dirty:       isWrite,
		referenced:  true,
		frameNumber: frame,
		lastAccess:  uint64(vm.accessCounter),
		loadedTime:  uint64(vm.accessCounter),
	}
	vm.frameTable[frame] = int(vpn)
	t.Insert(vpn, uint64(frame))
	return uint64(frame)*vm.pageSize + offset, "Page Fault"
}

// Stats renders the translator's summary statistics in the same layout
// as original_source/src/VirtualMemory.cpp::get_statistics.
func (vm *VirtualMemory) Stats() string {
	return fmt.Sprintf("VM: Hits=%d, Faults=%d, Disk=%d\n",
		int64(vm.pageHits), int64(vm.pageFaults), int64(vm.diskAccesses))
}
