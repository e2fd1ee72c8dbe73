package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/seantronsen/virtual-memory-sim/datarecording"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell [database]",
	Short: "Inspect a run database interactively.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		reader := openRunDatabase(args[0])
		defer reader.Close()

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "vmsim> ",
			HistoryFile:     filepath.Join(os.TempDir(), "vmsim_history"),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			log.Fatal(err)
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				break
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if !dispatchShellCommand(reader, line) {
				break
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func dispatchShellCommand(reader datarecording.DataReader, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "exit", "quit":
		return false
	case "help":
		printShellHelp()
	case "info":
		printRunInfo(reader)
	case "config":
		printRunConfig(reader)
	case "summary":
		printSummary(reader)
	case "mismatches":
		printMismatches(reader)
	case "trace":
		limit := 20
		if len(fields) > 1 {
			parsed, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Printf("expected a number, got %q\n", fields[1])
				return true
			}
			limit = parsed
		}
		printTrace(reader, limit)
	case "access":
		if len(fields) < 2 {
			fmt.Println("usage: access <sequence>")
			return true
		}
		printAccess(reader, fields[1])
	default:
		fmt.Printf("unknown command %q, try 'help'\n", fields[0])
	}

	return true
}

func printShellHelp() {
	fmt.Println(`Commands:
  info              show when and where the run happened
  config            show the configuration of the run
  summary           show the run counters and ratios
  trace [n]         show the first n accesses (default 20)
  access <seq>      show one access by sequence number
  mismatches        list accesses that missed the oracle
  exit              leave the shell`)
}

func printAccess(reader datarecording.DataReader, sequence string) {
	seq, err := strconv.ParseUint(sequence, 10, 64)
	if err != nil {
		fmt.Printf("expected a sequence number, got %q\n", sequence)
		return
	}

	results, _, err := reader.Query(
		context.Background(), "access_trace", datarecording.QueryParams{
			Where: "Sequence = ?",
			Args:  []any{seq},
		})
	if err != nil {
		log.Fatal(err)
	}

	if len(results) == 0 {
		fmt.Printf("no access with sequence %d\n", seq)
		return
	}

	trace := results[0].(*datarecording.AccessTrace)
	fmt.Printf("%-11s%d\n", "sequence:", trace.Sequence)
	fmt.Printf("%-11s%d\n", "virtual:", trace.Virtual)
	fmt.Printf("%-11s%d\n", "page:", trace.Page)
	fmt.Printf("%-11s%d\n", "offset:", trace.Offset)
	fmt.Printf("%-11s%d\n", "physical:", trace.Physical)
	fmt.Printf("%-11s%d\n", "value:", trace.Value)
	fmt.Printf("%-11s%s\n", "outcome:", trace.Outcome)
	fmt.Printf("%-11s%t\n", "match:", trace.Match)
}
