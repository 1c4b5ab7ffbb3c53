// Package dispatch parses one tokenized REPL line at a time and drives
// a world.World accordingly, rendering the same response strings as
// original_source/main.cpp's command loop.
package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"memsim/internal/allocator"
	"memsim/internal/cache"
	"memsim/internal/vmem"
	"memsim/internal/world"
)

// Dispatcher adapts one World to line-oriented command text.
type Dispatcher struct {
	w *world.World
}

// New returns a Dispatcher driving w.
func New(w *world.World) *Dispatcher {
	return &Dispatcher{w: w}
}

// Banner is the startup text printed once before the REPL loop begins,
// matching original_source/main.cpp's opening std::cout block.
const Banner = `====================================================
   Memory Management Simulator CLI Started
   Commands:
   - init memory <size>
   - set cache_policy <LRU|FIFO|LFU>
   - set page_policy <LRU|FIFO|CLOCK>
   - set allocator <buddy|first_fit|best_fit|worst_fit>
   - malloc <size> | free <id> | stats
   - read <v_addr> | write <v_addr>
   - dump memory | exit
====================================================`

// Exit is returned by Dispatch when the line is "exit"; the REPL loop
// should stop reading further input.
var Exit = fmt.Errorf("exit")

// ANSI color codes for the per-access report lines. These are written
// straight into the returned strings rather than through a styling
// library: cmd/memsim's go-colorable writer only translates the escape
// sequences for Windows consoles, it does not generate them.
const (
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// colorize wraps a translation/cache report in green for a hit and
// yellow for a fault or miss, so the REPL's hit/fault lines are visually
// distinct in an interactive terminal.
func colorize(report string) string {
	if strings.Contains(report, "Fault") || strings.Contains(report, "Miss") {
		return ansiYellow + report + ansiReset
	}
	return ansiGreen + report + ansiReset
}

// Dispatch handles one line of input, returning the text to print (with
// no trailing newline requirement — callers may print as-is). Dispatch
// never panics on malformed user input; the one fatal error path
// (invalid cache construction parameters) happens once at startup in
// world.New, not here.
func (d *Dispatcher) Dispatch(line string) (string, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", nil
	}
	cmd := tokens[0]

	if cmd == "exit" {
		return "", Exit
	}

	if cmd == "init" && len(tokens) >= 3 && tokens[1] == "memory" {
		size, err := strconv.ParseUint(tokens[2], 10, 64)
		if err != nil {
			return "Error: Invalid memory size.", nil
		}
		d.w.InitMemory(size)
		log.Info().Uint64("size", size).Msg("memory initialized")
		return fmt.Sprintf("Physical memory initialized to %d bytes.", size), nil
	}

	if !d.w.Initialized() {
		return "Error: Memory not initialized. Run 'init memory <size>' first.", nil
	}

	if cmd == "set" && len(tokens) >= 3 && tokens[1] == "cache_policy" {
		token := strings.ToUpper(tokens[2])
		p, ok := cache.ParsePolicy(token)
		if !ok {
			return fmt.Sprintf("Error: Unknown cache policy '%s'. Use LRU, FIFO, or LFU.", token), nil
		}
		d.w.SetCachePolicy(p)
		return fmt.Sprintf("Cache replacement policy set to %s for all levels.", token), nil
	}

	if cmd == "set" && len(tokens) >= 3 && tokens[1] == "page_policy" {
		token := strings.ToUpper(tokens[2])
		var p vmem.Policy
		switch token {
		case "LRU":
			p = vmem.LRU
		case "FIFO":
			p = vmem.FIFO
		case "CLOCK":
			p = vmem.CLOCK
		default:
			return fmt.Sprintf("Error: Unknown page policy '%s'. Use LRU, FIFO, or CLOCK.", token), nil
		}
		d.w.SetPagePolicy(p)
		return fmt.Sprintf("Page replacement policy set to %s.", token), nil
	}

	if cmd == "set" && len(tokens) >= 3 && tokens[1] == "allocator" {
		strat := tokens[2]
		d.w.SetAllocator(strat)
		if strat == "buddy" {
			return "Allocator set to Buddy System.", nil
		}
		return fmt.Sprintf("Allocator set to Linear (%s).", strat), nil
	}

	if cmd == "malloc" && len(tokens) >= 2 {
		size, err := strconv.ParseUint(tokens[1], 10, 64)
		if err != nil {
			return "Error: Invalid size.", nil
		}
		id := d.w.Malloc(size)
		if id == allocator.NoFit {
			return "Allocation failed.", nil
		}
		return fmt.Sprintf("Allocated block id=%d at address=0x%04X", id, d.w.Address(id)), nil
	}

	if cmd == "free" && len(tokens) >= 2 {
		id, err := strconv.Atoi(tokens[1])
		if err != nil {
			return "Error: Invalid id.", nil
		}
		d.w.Free(id)
		// Unconditional acknowledgment even for an unknown id — a known
		// imprecision preserved from original_source/main.cpp's free
		// handler (see Design Notes).
		return fmt.Sprintf("Block %d freed.", id), nil
	}

	if cmd == "read" || cmd == "write" {
		if len(tokens) < 2 {
			return "", nil
		}
		vAddr, err := strconv.ParseUint(tokens[1], 10, 64)
		if err != nil {
			return "Error: Invalid address.", nil
		}
		translation, cacheResult := d.w.Access(vAddr, cmd == "write")
		// original_source/main.cpp only suppresses the [Cache] line when
		// translate() returns its -1 sentinel; this translator always
		// resolves a fault to a frame, so the line is unconditional here.
		return fmt.Sprintf("[MMU] %s\n[Cache] %s", colorize(translation), colorize(cacheResult)), nil
	}

	if cmd == "stats" {
		return strings.TrimRight(d.w.Stats(), "\n"), nil
	}

	if cmd == "dump" && len(tokens) >= 2 && tokens[1] == "memory" {
		return strings.TrimRight(d.w.DumpMemory(), "\n"), nil
	}

	return fmt.Sprintf("Unknown command: %s", cmd), nil
}
