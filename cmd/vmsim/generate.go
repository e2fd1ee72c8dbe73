package main

import (
	"fmt"
	"log"

	"github.com/seantronsen/virtual-memory-sim/generator"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a backing store, an address stream, and a matching oracle.",
	Long: `Generate writes a random backing store and address stream, then ` +
		`replays them through a reference translation stack to produce the ` +
		`oracle file the run command validates against.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg := loadConfig(cmd)
		if err := cfg.Validate(); err != nil {
			log.Fatal(err)
		}

		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")

		finder, err := framepool.NewVictimFinder(cfg.Policy, seed)
		if err != nil {
			log.Fatal(err)
		}

		gen := generator.MakeBuilder().
			WithStorePath(cfg.FileStorage).
			WithAddressPath(cfg.FileAddress).
			WithOraclePath(cfg.FileValidation).
			WithAddressSpace(cfg.Space()).
			WithTLBSize(int(cfg.SizeTLB)).
			WithPoolCapacity(cfg.PoolCapacity()).
			WithVictimFinder(finder).
			WithCount(count).
			WithSeed(seed).
			Build()

		if err := gen.Generate(); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Backing store written to %s\n", cfg.FileStorage)
		fmt.Printf("Address stream written to %s\n", cfg.FileAddress)
		fmt.Printf("Oracle written to %s\n", cfg.FileValidation)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addConfigFlags(generateCmd)
	generateCmd.Flags().Int("count", 1000, "Number of addresses to generate")
	generateCmd.Flags().Int64("seed", 1, "Seed for the random source")
}
