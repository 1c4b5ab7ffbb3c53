package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMkDefaults(t *testing.T) {
	d := MkDefaults()
	if d.L1.SizeBytes != 64 || d.L1.BlockBytes != 8 || d.L1.Associativity != 1 {
		t.Errorf("L1 = %+v, want {64 8 1}", d.L1)
	}
	if d.L2.SizeBytes != 256 || d.L2.BlockBytes != 16 || d.L2.Associativity != 2 {
		t.Errorf("L2 = %+v, want {256 16 2}", d.L2)
	}
	if d.L3.SizeBytes != 512 || d.L3.BlockBytes != 32 || d.L3.Associativity != 4 {
		t.Errorf("L3 = %+v, want {512 32 4}", d.L3)
	}
	if d.VM.PageSize != 64 || d.VM.VirtualSize != 4096 || d.VM.PhysicalSize != 1024 {
		t.Errorf("VM = %+v, want {64 4096 1024}", d.VM)
	}
	if d.TLB.Entries != 16 || d.TLB.Ways != 4 {
		t.Errorf("TLB = %+v, want {16 4}", d.TLB)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *d != *MkDefaults() {
		t.Errorf("Load(missing) = %+v, want defaults", d)
	}
}

func TestLoadOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memsim.toml")
	const toml = `
[l1]
size_bytes = 128
block_bytes = 8
associativity = 2
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.L1.SizeBytes != 128 || d.L1.Associativity != 2 {
		t.Errorf("L1 = %+v, want overridden size/associativity", d.L1)
	}
	// Unspecified sections keep their defaults.
	if d.L2.SizeBytes != 256 {
		t.Errorf("L2.SizeBytes = %d, want unchanged default 256", d.L2.SizeBytes)
	}
}
