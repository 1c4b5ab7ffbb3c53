// Package config holds the simulator's fixed startup tunables and an
// optional TOML file used to override them before the REPL starts.
//
// Grounded on the teacher's limits package: Syslimit_t is a struct of
// named tunables built once via MkSysLimit() at boot and never mutated
// by request handling afterward. This package plays the same role for
// the cache hierarchy, VM, and TLB geometry: fixed at startup, read-only
// to every command thereafter (spec.md §6's "Default configuration
// (fixed, not configurable via CLI)").
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// CacheLevelConfig describes one level of the cache hierarchy.
type CacheLevelConfig struct {
	SizeBytes     uint64 `toml:"size_bytes"`
	BlockBytes    uint64 `toml:"block_bytes"`
	Associativity int    `toml:"associativity"`
}

// VMConfig describes the virtual memory geometry.
type VMConfig struct {
	PageSize     uint64 `toml:"page_size"`
	VirtualSize  uint64 `toml:"virtual_size"`
	PhysicalSize uint64 `toml:"physical_size"`
}

// TLBConfig describes the TLB geometry.
type TLBConfig struct {
	Entries int `toml:"entries"`
	Ways    int `toml:"ways"`
}

// Defaults is the full set of startup tunables. Values are spec.md §6's
// fixed defaults unless overridden by a loaded TOML file.
type Defaults struct {
	L1  CacheLevelConfig `toml:"l1"`
	L2  CacheLevelConfig `toml:"l2"`
	L3  CacheLevelConfig `toml:"l3"`
	VM  VMConfig         `toml:"vm"`
	TLB TLBConfig        `toml:"tlb"`
}

// MkDefaults returns the fixed spec.md §6 configuration.
func MkDefaults() *Defaults {
	return &Defaults{
		L1: CacheLevelConfig{SizeBytes: 64, BlockBytes: 8, Associativity: 1},
		L2: CacheLevelConfig{SizeBytes: 256, BlockBytes: 16, Associativity: 2},
		L3: CacheLevelConfig{SizeBytes: 512, BlockBytes: 32, Associativity: 4},
		VM: VMConfig{PageSize: 64, VirtualSize: 4096, PhysicalSize: 1024},
		TLB: TLBConfig{Entries: 16, Ways: 4},
	}
}

// Load returns MkDefaults(), overridden field-by-field by path if it
// exists. A missing file is not an error — the fixed defaults apply
// unchanged, per spec.md §6.
func Load(path string) (*Defaults, error) {
	d := MkDefaults()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, err
	}
	if _, err := toml.DecodeFile(path, d); err != nil {
		return nil, err
	}
	return d, nil
}
