package cache

// Hierarchy is the inclusive three-level writeback cache
// (L1 ⊂ L2 ⊂ L3), exactly as original_source/src/Cache.cpp's
// MemoryHierarchy::request cascades lookups and insertions.
type Hierarchy struct {
	L1 *Level
	L2 *Level
	L3 *Level
}

// NewHierarchy builds the three levels from their geometry. Replacement
// policy is shared across all three levels at construction time; each
// level's SetPolicy can still be changed independently afterward.
func NewHierarchy(l1Size, l1Block uint64, l1Assoc int, l2Size, l2Block uint64, l2Assoc int,
	l3Size, l3Block uint64, l3Assoc int, policy Policy) *Hierarchy {
	return &Hierarchy{
		L1: NewLevel(1, l1Size, l1Block, l1Assoc, policy),
		L2: NewLevel(2, l2Size, l2Block, l2Assoc, policy),
		L3: NewLevel(3, l3Size, l3Block, l3Assoc, policy),
	}
}

// SetPolicy changes the replacement policy of all three levels.
func (h *Hierarchy) SetPolicy(p Policy) {
	h.L1.SetPolicy(p)
	h.L2.SetPolicy(p)
	h.L3.SetPolicy(p)
}

// handleWriteback models a dirty eviction's trip toward backing storage
// as a write access at the next level down: an L1 eviction becomes an
// L2 write, an L2 eviction becomes an L3 write, and an L3 eviction
// (nothing left below it but RAM) becomes another L3 write standing in
// for "wrote back to RAM" — spec.md §4.4/§9 names this explicitly
// ("Writeback to RAM is modeled as l3.access(addr, true)") even though
// original_source/src/Cache.cpp's handle_writeback helper has no
// level-3 branch and so silently drops that case; this implementation
// follows the spec's stated intent rather than the original's
// incomplete if/else chain.
func (h *Hierarchy) handleWriteback(addr uint64, fromLevel int) {
	switch fromLevel {
	case 1:
		h.L2.Access(addr, true)
	case 2:
		h.L3.Access(addr, true)
	case 3:
		h.L3.Access(addr, true)
	}
}

// Request simulates one memory access through the hierarchy, returning
// the same human-readable outcome strings as
// original_source/src/Cache.cpp's MemoryHierarchy::request.
func (h *Hierarchy) Request(addr uint64, isWrite bool) string {
	if h.L1.Access(addr, isWrite) {
		return "L1 Hit"
	}

	if h.L2.Access(addr, isWrite) {
		evicted, evAddr, evDirty := h.L1.Insert(addr, isWrite)
		if evicted && evDirty {
			h.handleWriteback(evAddr, 1)
		}
		return "L2 Hit"
	}

	if h.L3.Access(addr, isWrite) {
		evicted, evAddr, evDirty := h.L2.Insert(addr, isWrite)
		if evicted {
			if h.L1.Invalidate(evAddr) {
				evDirty = true
			}
			if evDirty {
				h.handleWriteback(evAddr, 2)
			}
		}
		// L1's own eviction here is intentionally not propagated further
		// (the writeback-asymmetry quirk preserved from spec.md §9).
		h.L1.Insert(addr, isWrite)
		return "L3 Hit"
	}

	evicted, evAddr, evDirty := h.L3.Insert(addr, isWrite)
	if evicted {
		d1 := h.L2.Invalidate(evAddr)
		d2 := h.L1.Invalidate(evAddr)
		if d1 || d2 {
			evDirty = true
		}
		if evDirty {
			h.handleWriteback(evAddr, 3)
		}
	}
	h.L2.Insert(addr, isWrite)
	h.L1.Insert(addr, isWrite)
	return "RAM Miss (Fetched to Caches)"
}

// InvalidatePhysicalRange invalidates every cache line covering
// [start, start+size) in all three levels. Used when a page frame is
// evicted by the virtual memory translator (spec.md §4.5).
func (h *Hierarchy) InvalidatePhysicalRange(start, size uint64) {
	h.L1.InvalidateFrame(start, size)
	h.L2.InvalidateFrame(start, size)
	h.L3.InvalidateFrame(start, size)
}

// DisplayStats renders all three levels' stats, L1 first.
func (h *Hierarchy) DisplayStats() string {
	return h.L1.StatsLine() + h.L2.StatsLine() + h.L3.StatsLine()
}
