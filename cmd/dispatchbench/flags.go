package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"strings"

	"github.com/starkexec/core/felt"
)

// Config holds dispatchbench's resolved CLI configuration.
type Config struct {
	Address   felt.Felt
	Key       felt.Felt
	Value     felt.Felt
	Salt      felt.Felt
	Verbosity int
}

// DefaultConfig returns Config's defaults, matching the usage banner in
// main.go's doc comment.
func DefaultConfig() Config {
	return Config{
		Address:   felt.FromUint64(1),
		Key:       felt.FromUint64(1),
		Value:     felt.FromUint64(42),
		Salt:      felt.FromUint64(1),
		Verbosity: 3,
	}
}

// flagSet wraps flag.FlagSet to add support for felt-valued flags.
type flagSet struct {
	*flag.FlagSet
}

// newCustomFlagSet creates a flagSet with ContinueOnError behavior.
func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// FeltVar defines a hex-encoded felt flag. Go's standard flag package has
// no native felt type, so this uses a custom flag.Value implementation
// (feltValue, below).
func (fs *flagSet) FeltVar(p *felt.Felt, name string, value felt.Felt, usage string) {
	fs.FlagSet.Var(&feltValue{p: p}, name, usage)
	*p = value
}

// feltValue implements flag.Value for hex-encoded felt flags.
type feltValue struct {
	p *felt.Felt
}

func (v *feltValue) String() string {
	if v.p == nil {
		return "0x0"
	}
	return v.p.String()
}

func (v *feltValue) Set(s string) error {
	f, err := parseFeltHex(s)
	if err != nil {
		return err
	}
	*v.p = f
	return nil
}

// parseFeltHex decodes a 0x-prefixed (or bare) hex string into a felt,
// left-zero-padding to 32 bytes.
func parseFeltHex(s string) (felt.Felt, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return felt.Felt{}, fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	return felt.FromBytes(b)
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to the given
// Config. The FlagSet uses ContinueOnError so callers control the error
// handling behavior.
func newFlagSet(cfg *Config) *flagSet {
	fs := newCustomFlagSet("dispatchbench")
	fs.FeltVar(&cfg.Address, "address", cfg.Address, "storage address to write/read, hex")
	fs.FeltVar(&cfg.Key, "key", cfg.Key, "storage key, hex")
	fs.FeltVar(&cfg.Value, "value", cfg.Value, "storage value to write, hex")
	fs.FeltVar(&cfg.Salt, "salt", cfg.Salt, "deploy salt, hex")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "verbosity 0-5, echoed in the startup banner; it does not change what is logged")
	return fs
}
