package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/seantronsen/virtual-memory-sim/datarecording"
	"github.com/spf13/cobra"
)

type runInfoRow struct {
	Property string
	Value    string
}

type runConfigRow struct {
	Parameter string
	Value     string
}

var reportCmd = &cobra.Command{
	Use:   "report [database]",
	Short: "Summarize a recorded run database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reader := openRunDatabase(args[0])
		defer reader.Close()

		printRunInfo(reader)
		printRunConfig(reader)
		printSummary(reader)

		if mismatches, _ := cmd.Flags().GetBool("mismatches"); mismatches {
			printMismatches(reader)
		}

		if limit, _ := cmd.Flags().GetInt("trace"); limit > 0 {
			printTrace(reader, limit)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("mismatches", false,
		"List accesses that missed the oracle")
	reportCmd.Flags().Int("trace", 0, "Show the first N accesses of the trace")
}

func openRunDatabase(path string) datarecording.DataReader {
	if _, err := os.Stat(path); err != nil {
		log.Fatalf("Cannot open run database: %s", err)
	}

	reader := datarecording.NewReader(path)

	reader.MapTable("run_info", runInfoRow{})
	reader.MapTable("run_config", runConfigRow{})
	reader.MapTable("access_trace", datarecording.AccessTrace{})
	reader.MapTable("run_summary", datarecording.RunSummary{})

	return reader
}

func printRunInfo(reader datarecording.DataReader) {
	results, _, err := reader.Query(
		context.Background(), "run_info", datarecording.QueryParams{})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Run Info")
	fmt.Println("---------------------------------")
	for _, result := range results {
		row := result.(*runInfoRow)
		fmt.Printf("%-25s%s\n", row.Property+":", row.Value)
	}
	fmt.Println()
}

func printRunConfig(reader datarecording.DataReader) {
	results, _, err := reader.Query(
		context.Background(), "run_config", datarecording.QueryParams{})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Run Configuration")
	fmt.Println("---------------------------------")
	for _, result := range results {
		row := result.(*runConfigRow)
		fmt.Printf("%-25s%s\n", row.Parameter+":", row.Value)
	}
	fmt.Println()
}

func printSummary(reader datarecording.DataReader) {
	results, _, err := reader.Query(
		context.Background(), "run_summary", datarecording.QueryParams{})
	if err != nil {
		log.Fatal(err)
	}

	if len(results) == 0 {
		fmt.Println("The run recorded no summary.")
		return
	}

	summary := results[0].(*datarecording.RunSummary)
	fmt.Println("Run Summary")
	fmt.Println("---------------------------------")
	fmt.Printf("%-25s%d\n", "attempted_accesses:", summary.AttemptedAccesses)
	fmt.Printf("%-25s%d\n", "correct_accesses:", summary.CorrectAccesses)
	fmt.Printf("%-25s%d\n", "page_hits:", summary.PageHits)
	fmt.Printf("%-25s%d\n", "tlb_hits:", summary.TLBHits)
	fmt.Printf("%-25s%d\n", "tlb_flushes:", summary.TLBFlushes)
	fmt.Printf("%-25s%.6f\n", "tlb_hit_ratio:", summary.TLBHitRatio)
	fmt.Printf("%-25s%.6f\n", "page_hit_ratio:", summary.PageHitRatio)
	fmt.Println()
}

func printMismatches(reader datarecording.DataReader) {
	results, total, err := reader.Query(
		context.Background(), "access_trace", datarecording.QueryParams{
			Where:   "Match = 0",
			OrderBy: "Sequence",
		})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Mismatched Accesses: %d\n", total)
	fmt.Println("---------------------------------")
	for _, result := range results {
		trace := result.(*datarecording.AccessTrace)
		fmt.Printf("%6d  virtual %5d  physical %5d  value %4d  %s\n",
			trace.Sequence, trace.Virtual, trace.Physical, trace.Value,
			trace.Outcome)
	}
	fmt.Println()
}

func printTrace(reader datarecording.DataReader, limit int) {
	results, total, err := reader.Query(
		context.Background(), "access_trace", datarecording.QueryParams{
			OrderBy: "Sequence",
			Limit:   limit,
		})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Access Trace: %d of %d\n", len(results), total)
	fmt.Println("---------------------------------")
	for _, result := range results {
		trace := result.(*datarecording.AccessTrace)
		match := "ok"
		if !trace.Match {
			match = "MISMATCH"
		}

		fmt.Printf(
			"%6d  virtual %5d  page %3d  offset %3d  physical %5d  "+
				"value %4d  %-10s %s\n",
			trace.Sequence, trace.Virtual, trace.Page, trace.Offset,
			trace.Physical, trace.Value, trace.Outcome, match)
	}
	fmt.Println()
}
