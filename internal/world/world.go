// Package world holds the single simulator instance — both physical
// allocators, the active selection between them, the cache hierarchy,
// the TLB, and the virtual memory translator — threaded explicitly
// into the dispatcher rather than held as a package-level singleton
// (Design Notes "Global mutable state").
//
// Grounded on original_source/main.cpp, which holds the equivalent set
// of objects as local variables in main() and passes pointers to them
// into the command handlers; here they are fields of one value
// constructed once at startup.
package world

import (
	"fmt"

	"memsim/internal/allocator"
	"memsim/internal/buddy"
	"memsim/internal/cache"
	"memsim/internal/config"
	"memsim/internal/linear"
	"memsim/internal/tlb"
	"memsim/internal/vmem"
)

// AllocatorKind selects which physical allocator backs malloc/free.
type AllocatorKind int

const (
	Linear AllocatorKind = iota
	Buddy
)

// World is the simulator's complete mutable state.
type World struct {
	cfg *config.Defaults

	linear *linear.Allocator
	buddy  *buddy.Allocator

	activeKind AllocatorKind
	fitAlgo    allocator.Algo

	Cache *cache.Hierarchy
	TLB   *tlb.TLB
	VM    *vmem.VirtualMemory

	initialized bool
}

// New constructs a world from cfg. The cache hierarchy, TLB, and VM are
// built immediately (their geometry is fixed at startup, spec.md §6);
// the allocators start uninitialized until the first `init memory`.
func New(cfg *config.Defaults) *World {
	h := cache.NewHierarchy(
		cfg.L1.SizeBytes, cfg.L1.BlockBytes, cfg.L1.Associativity,
		cfg.L2.SizeBytes, cfg.L2.BlockBytes, cfg.L2.Associativity,
		cfg.L3.SizeBytes, cfg.L3.BlockBytes, cfg.L3.Associativity,
		cache.LRU,
	)
	return &World{
		cfg:        cfg,
		linear:     linear.New(),
		buddy:      buddy.New(),
		activeKind: Linear,
		fitAlgo:    allocator.FirstFit,
		Cache:      h,
		TLB:        tlb.New(cfg.TLB.Entries, cfg.TLB.Ways),
		VM:         vmem.New(cfg.VM.PageSize, cfg.VM.VirtualSize, cfg.VM.PhysicalSize, vmem.LRU, h),
	}
}

// Initialized reports whether `init memory` has run. Per spec.md §6,
// every command but init/exit requires this.
func (w *World) Initialized() bool { return w.initialized }

// InitMemory reinitializes both allocators with the given physical
// size. It does not affect the cache hierarchy or VM (spec.md §5
// lifecycle note).
func (w *World) InitMemory(size uint64) {
	w.linear.Init(size)
	w.buddy.Init(size)
	w.initialized = true
}

// active returns the currently selected allocator.
func (w *World) active() allocator.Allocator {
	if w.activeKind == Buddy {
		return w.buddy
	}
	return w.linear
}

// SetAllocator selects the active allocator and, for the linear
// allocator, the fit strategy. Unrecognized tokens default to linear +
// first-fit, per spec.md §6.
func (w *World) SetAllocator(token string) {
	switch token {
	case "buddy":
		w.activeKind = Buddy
	case "first_fit":
		w.activeKind = Linear
		w.fitAlgo = allocator.FirstFit
	case "best_fit":
		w.activeKind = Linear
		w.fitAlgo = allocator.BestFit
	case "worst_fit":
		w.activeKind = Linear
		w.fitAlgo = allocator.WorstFit
	default:
		w.activeKind = Linear
		w.fitAlgo = allocator.FirstFit
	}
}

// SetCachePolicy applies p to all three cache levels.
func (w *World) SetCachePolicy(p cache.Policy) {
	w.Cache.SetPolicy(p)
}

// SetPagePolicy applies p to the VM translator.
func (w *World) SetPagePolicy(p vmem.Policy) {
	w.VM.SetReplacementPolicy(p)
}

// Malloc allocates size bytes via the active allocator, returning the
// new id or allocator.NoFit.
func (w *World) Malloc(size uint64) int {
	return w.active().Allocate(size, w.fitAlgo)
}

// Address returns the start address of id in the active allocator, or
// allocator.NoAddress if unknown.
func (w *World) Address(id int) uint64 {
	return w.active().GetAddress(id)
}

// Free releases id in the active allocator. Unknown ids are a silent
// no-op at this layer (spec.md §7); the dispatcher is responsible for
// the unconditional acknowledgment message.
func (w *World) Free(id int) {
	w.active().Deallocate(id)
}

// Access translates a virtual address and then drives the resulting
// physical address through the cache hierarchy, returning both the
// translation report and the cache result — exactly the two lines
// original_source/main.cpp prints for `read`/`write`.
func (w *World) Access(vAddr uint64, isWrite bool) (translation string, cacheResult string) {
	phys, report := w.VM.Translate(vAddr, isWrite, w.TLB)
	return report, w.Cache.Request(phys, isWrite)
}

// Stats renders every subsystem's statistics in the order
// original_source/main.cpp's `stats` handler calls them: active
// allocator, then cache hierarchy, then VM.
func (w *World) Stats() string {
	return fmt.Sprintf("%s%s%s", w.active().Stats(), w.Cache.DisplayStats(), w.VM.Stats())
}

// DumpMemory renders the active allocator's block/free-list layout.
func (w *World) DumpMemory() string {
	return w.active().Display()
}
