// Package config holds the run parameters of a simulation. Values resolve
// in precedence order: command line flag, then SIM_* environment variable
// (optionally sourced from a .env file), then the built-in default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
)

// A Config carries every parameter of one simulation run. It is set once at
// startup and never mutated afterwards.
type Config struct {
	FileStorage    string
	FileValidation string
	FileAddress    string

	SizeTable uint64
	SizeTLB   uint64
	SizeFrame uint64

	// SizePool zero means the pool matches SizeTable, which removes all
	// contention: every page stays resident once faulted in.
	SizePool uint64

	DelayUS uint64
	Policy  string
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		FileStorage:    "BACKING_STORE.bin",
		FileValidation: "correct.txt",
		FileAddress:    "addresses.txt",
		SizeTable:      64,
		SizeTLB:        16,
		SizeFrame:      256,
		SizePool:       0,
		DelayUS:        250,
		Policy:         "fifo",
	}
}

// LoadEnvironment overrides the receiver with any SIM_* variables present
// in the process environment. A .env file in the working directory is
// sourced first when it exists.
func (c *Config) LoadEnvironment() error {
	godotenv.Load()

	envString("SIM_FILE_STORAGE", &c.FileStorage)
	envString("SIM_FILE_VALIDATION", &c.FileValidation)
	envString("SIM_FILE_ADDRESS", &c.FileAddress)
	envString("SIM_POLICY", &c.Policy)

	for _, v := range []struct {
		name   string
		target *uint64
	}{
		{"SIM_SIZE_TABLE", &c.SizeTable},
		{"SIM_SIZE_TLB", &c.SizeTLB},
		{"SIM_SIZE_FRAME", &c.SizeFrame},
		{"SIM_SIZE_POOL", &c.SizePool},
		{"SIM_DELAY_US", &c.DelayUS},
	} {
		if err := envUint(v.name, v.target); err != nil {
			return err
		}
	}

	return nil
}

// Validate rejects geometries the simulation cannot run with.
func (c Config) Validate() error {
	if c.SizeTLB == 0 || c.SizeTLB > c.SizeTable {
		return errors.New("'size_tlb' must be a non-zero value less than 'size_table'")
	}

	if c.SizeFrame == 0 || c.SizeFrame&(c.SizeFrame-1) != 0 {
		return errors.New("'size_frame' must be a non-zero power of 2 integer value")
	}

	if c.SizePool > c.SizeTable {
		return errors.New("'size_pool' must not exceed 'size_table'")
	}

	if _, err := framepool.NewVictimFinder(c.Policy, 0); err != nil {
		return err
	}

	return nil
}

// Space returns the address space the configuration describes.
func (c Config) Space() vm.AddressSpace {
	return vm.AddressSpace{
		PageCount: c.SizeTable,
		FrameSize: c.SizeFrame,
	}
}

// PoolCapacity returns the effective frame pool capacity.
func (c Config) PoolCapacity() uint64 {
	if c.SizePool == 0 {
		return c.SizeTable
	}

	return c.SizePool
}

// Delay returns the simulated per-access latency.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayUS) * time.Microsecond
}

func (c Config) String() string {
	return fmt.Sprintf(`
Simulation Configuration
---------------------------------
file_storage:            %s
file_validation:         %s
file_address:            %s
size_table:              %d
size_tlb:                %d
size_frame:              %d
size_pool:               %d
delay_us:                %d
policy:                  %s
`,
		c.FileStorage,
		c.FileValidation,
		c.FileAddress,
		c.SizeTable,
		c.SizeTLB,
		c.SizeFrame,
		c.PoolCapacity(),
		c.DelayUS,
		c.Policy,
	)
}

func envString(name string, target *string) {
	if value, ok := os.LookupEnv(name); ok {
		*target = value
	}
}

func envUint(name string, target *uint64) error {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("expected unsigned int for env var '%s'", name)
	}

	*target = parsed

	return nil
}
