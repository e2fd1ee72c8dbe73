package main

import (
	"log"

	"github.com/seantronsen/virtual-memory-sim/config"
	"github.com/spf13/cobra"
)

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("file-storage", "", "Path to the backing store file")
	cmd.Flags().String("file-validation", "", "Path to the oracle file")
	cmd.Flags().String("file-address", "", "Path to the address stream file")
	cmd.Flags().Uint64("size-table", 0, "Number of page table entries")
	cmd.Flags().Uint64("size-tlb", 0, "Number of TLB entries")
	cmd.Flags().Uint64("size-frame", 0, "Frame size in bytes")
	cmd.Flags().Uint64("size-pool", 0,
		"Number of physical frames (0 covers the whole table)")
	cmd.Flags().Uint64("delay-us", 0,
		"Simulated per-access delay in microseconds")
	cmd.Flags().String("policy", "",
		"Eviction policy: fifo, lru, clock, or random")
}

// loadConfig layers the configuration sources: defaults, then environment
// variables, then explicitly set flags.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Default()
	if err := cfg.LoadEnvironment(); err != nil {
		log.Fatal(err)
	}

	flags := cmd.Flags()
	if flags.Changed("file-storage") {
		cfg.FileStorage, _ = flags.GetString("file-storage")
	}
	if flags.Changed("file-validation") {
		cfg.FileValidation, _ = flags.GetString("file-validation")
	}
	if flags.Changed("file-address") {
		cfg.FileAddress, _ = flags.GetString("file-address")
	}
	if flags.Changed("size-table") {
		cfg.SizeTable, _ = flags.GetUint64("size-table")
	}
	if flags.Changed("size-tlb") {
		cfg.SizeTLB, _ = flags.GetUint64("size-tlb")
	}
	if flags.Changed("size-frame") {
		cfg.SizeFrame, _ = flags.GetUint64("size-frame")
	}
	if flags.Changed("size-pool") {
		cfg.SizePool, _ = flags.GetUint64("size-pool")
	}
	if flags.Changed("delay-us") {
		cfg.DelayUS, _ = flags.GetUint64("delay-us")
	}
	if flags.Changed("policy") {
		cfg.Policy, _ = flags.GetString("policy")
	}

	return cfg
}
