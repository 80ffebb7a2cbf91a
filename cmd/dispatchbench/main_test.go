package main

import (
	"testing"

	"github.com/starkexec/core/felt"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, exit, code := parseFlags(nil)
	if exit {
		t.Fatalf("exit = true (code %d), want false", code)
	}
	want := DefaultConfig()
	if cfg.Address != want.Address || cfg.Key != want.Key || cfg.Value != want.Value {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

func TestParseFlagsOverridesFelts(t *testing.T) {
	cfg, exit, _ := parseFlags([]string{"--address", "0x2a", "--key", "0x7", "--value", "0x64"})
	if exit {
		t.Fatal("unexpected exit")
	}
	if cfg.Address != felt.FromUint64(0x2a) {
		t.Fatalf("Address = %s, want 0x2a", cfg.Address)
	}
	if cfg.Key != felt.FromUint64(0x7) {
		t.Fatalf("Key = %s, want 0x7", cfg.Key)
	}
	if cfg.Value != felt.FromUint64(0x64) {
		t.Fatalf("Value = %s, want 0x64", cfg.Value)
	}
}

func TestParseFlagsVersionExits(t *testing.T) {
	_, exit, code := parseFlags([]string{"--version"})
	if !exit || code != 0 {
		t.Fatalf("exit = %v, code = %d, want true, 0", exit, code)
	}
}

func TestParseFeltHexRejectsGarbage(t *testing.T) {
	if _, err := parseFeltHex("not-hex"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

func TestReplayWritesThenReadsBackSameValue(t *testing.T) {
	cfg := DefaultConfig()
	result, err := replay(cfg)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.StorageReadBack != cfg.Value.String() {
		t.Fatalf("read back %s, want %s", result.StorageReadBack, cfg.Value.String())
	}
	if len(result.Diff.DeployedContracts) != 1 {
		t.Fatalf("deployed contracts = %d, want 1", len(result.Diff.DeployedContracts))
	}
}
