// Package cache implements the set-associative cache level and the
// three-level writeback hierarchy from spec.md §4.3–§4.4.
//
// Grounded algorithmically on original_source/src/Cache.{h,cpp}. Like
// the teacher's biscuit/src/mem/mem.go, which stops rather than returns
// an error when an invariant the caller controls is violated, set
// construction here treats bad parameters as a programming error, not
// recoverable simulator input: NewLevel reports them through zerolog's
// log.Fatal, which exits the process, matching spec.md §7's "Fatal at
// startup" policy for this one error kind.
package cache

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"memsim/internal/numeric"
	"memsim/internal/stats"
)

// Policy selects which resident line a Level evicts on insert.
type Policy int

const (
	LRU Policy = iota
	FIFO
	LFU
)

// ParsePolicy parses a case-insensitive cache policy token (spec.md §6's
// "set cache_policy" command). It reports false for unrecognized tokens.
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToUpper(s) {
	case "LRU":
		return LRU, true
	case "FIFO":
		return FIFO, true
	case "LFU":
		return LFU, true
	default:
		return 0, false
	}
}

func (p Policy) String() string {
	switch p {
	case LRU:
		return "LRU"
	case FIFO:
		return "FIFO"
	case LFU:
		return "LFU"
	default:
		return "?"
	}
}

// line is one cache line's metadata (spec.md §3: no data payload).
type line struct {
	valid         bool
	dirty         bool
	tag           uint64
	lastAccess    uint64
	insertionTime uint64
	freq          uint64
}

// Level is one set-associative cache level.
type Level struct {
	id            int
	sizeBytes     uint64
	blockSize     uint64
	associativity int
	numSets       uint64
	offsetBits    uint
	indexBits     uint
	policy        Policy

	sets [][]line

	hits          stats.Counter
	misses        stats.Counter
	accessCounter uint64
}

// NewLevel constructs a cache level. Per spec.md §3/§7, size, blockSize,
// and associativity must all be nonzero and the derived set count must
// be a power of two; violations are a construction-time programming
// error, reported fatally rather than returned, matching spec.md §7's
// "Invalid cache params ... Fatal at startup."
func NewLevel(id int, sizeBytes, blockSize uint64, associativity int, policy Policy) *Level {
	if sizeBytes == 0 || blockSize == 0 || associativity == 0 {
		log.Fatal().Int("level", id).Msg("cache: size, block size, and associativity must be nonzero")
	}
	numSets := sizeBytes / (blockSize * uint64(associativity))
	if !numeric.IsPow2(numSets) {
		log.Fatal().Int("level", id).Uint64("num_sets", numSets).
			Msg("cache: number of sets must be a power of two")
	}

	l := &Level{
		id:            id,
		sizeBytes:     sizeBytes,
		blockSize:     blockSize,
		associativity: associativity,
		numSets:       numSets,
		offsetBits:    numeric.Log2(blockSize),
		indexBits:     numeric.Log2(numSets),
		policy:        policy,
		sets:          make([][]line, numSets),
	}
	for i := range l.sets {
		l.sets[i] = make([]line, associativity)
	}
	return l
}

// ID returns the level's configured identifier (L1=1, L2=2, L3=3).
func (l *Level) ID() int { return l.id }

// SetPolicy changes the replacement policy used by future insertions.
// It does not retroactively alter any line's timestamps.
func (l *Level) SetPolicy(p Policy) {
	log.Debug().Int("level", l.id).Str("policy", p.String()).Msg("cache policy changed")
	l.policy = p
}

func (l *Level) split(addr uint64) (index, tag uint64) {
	index = (addr >> l.offsetBits) % l.numSets
	tag = addr >> (l.offsetBits + l.indexBits)
	return
}

func (l *Level) addrOf(index, tag uint64) uint64 {
	return (tag << (l.offsetBits + l.indexBits)) | (index << l.offsetBits)
}

// Access looks up addr, updating hit/miss counters and, on a hit, the
// line's recency/frequency/dirty state. It does not install a new line
// on a miss — Insert is the separate step that does, so a caller (the
// hierarchy) can propagate writebacks between the two.
func (l *Level) Access(addr uint64, isWrite bool) bool {
	l.accessCounter++
	index, tag := l.split(addr)
	set := l.sets[index]
	for i := range set {
		ln := &set[i]
		if ln.valid && ln.tag == tag {
			l.hits.Inc()
			ln.lastAccess = l.accessCounter
			ln.freq++
			if isWrite {
				ln.dirty = true
			}
			return true
		}
	}
	l.misses.Inc()
	return false
}

// Insert installs a new line for addr, evicting a victim from its set
// if every way is occupied. It reports whether a valid line was evicted
// and, if so, that line's reconstructed address and dirty bit.
func (l *Level) Insert(addr uint64, isWrite bool) (evicted bool, evAddr uint64, evDirty bool) {
	index, tag := l.split(addr)
	set := l.sets[index]

	victim := 0
	minVal := ^uint64(0)
	for i := range set {
		if !set[i].valid {
			victim = i
			break
		}
		var val uint64
		switch l.policy {
		case LRU:
			val = set[i].lastAccess
		case FIFO:
			val = set[i].insertionTime
		case LFU:
			val = set[i].freq
		}
		if val < minVal {
			minVal = val
			victim = i
		}
	}

	if set[victim].valid {
		evicted = true
		evAddr = l.addrOf(index, set[victim].tag)
		evDirty = set[victim].dirty
	}

	set[victim] = line{
		valid:         true,
		dirty:         isWrite,
		tag:           tag,
		lastAccess:    l.accessCounter,
		insertionTime: l.accessCounter,
		freq:          1,
	}
	return
}

// Invalidate clears the valid line matching addr, if any, and reports
// its pre-invalidation dirty bit. It returns false both when no line
// matches and when the matching line was clean — callers that need to
// distinguish "not present" from "present and clean" should check
// Access first; the hierarchy's inclusion bookkeeping (spec.md §4.4)
// only ever needs the OR of this value with other sources, which is
// exactly what original_source/src/Cache.cpp's callers do too.
func (l *Level) Invalidate(addr uint64) bool {
	index, tag := l.split(addr)
	set := l.sets[index]
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			wasDirty := set[i].dirty
			set[i].valid = false
			return wasDirty
		}
	}
	return false
}

// InvalidateFrame invalidates every block-aligned address in
// [start, start+rng).
func (l *Level) InvalidateFrame(start, rng uint64) {
	for a := start; a < start+rng; a += l.blockSize {
		l.Invalidate(a)
	}
}

// HitRate returns hits/(hits+misses) as a percentage.
func (l *Level) HitRate() float64 {
	return stats.HitRate(l.hits, l.misses)
}

// StatsLine renders the level's stats in the teacher's display_stats
// layout (original_source/src/Cache.cpp::display_stats).
func (l *Level) StatsLine() string {
	return fmt.Sprintf("L%d Stats: Hits=%-5d | Misses=%-5d | Hit Rate=%6.2f%%\n",
		l.id, int64(l.hits), int64(l.misses), l.HitRate())
}
