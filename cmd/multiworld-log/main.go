// Command multiworld-log views and analyzes multiworld protocol log
// files.
//
// Log files are created by running multiworld-console with the
// -log-file flag.
//
// Usage:
//
//	multiworld-log <command> [flags] <file.aplog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	multiworld-log view session.aplog
//
//	# View only outgoing packets
//	multiworld-log view -direction out -category packet session.aplog
//
//	# Export to JSONL
//	multiworld-log export -format jsonl session.aplog
//
//	# Keep only one connection's events
//	multiworld-log filter -conn-id abc12345 -o filtered.aplog session.aplog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/multiworld-protocol/multiworld-go/cmd/multiworld-log/commands"
	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

const usage = `multiworld-log - Multiworld Protocol Log Analyzer

Usage:
  multiworld-log <command> [flags] <file.aplog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "multiworld-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	layer := fs.String("layer", "", "Filter by layer (transport, wire, protocol)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, packet, state, error)")

	path := parseWithPath(fs, args)

	var filter log.Filter
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		exitOn(err)
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		exitOn(err)
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		exitOn(err)
		filter.Category = &c
	}

	exitOn(commands.RunView(path, filter, os.Stdout))
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parseWithPath(fs, args)
	exitOn(commands.RunExport(path, *format, *output))
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	output := fs.String("o", "", "Output file (required)")
	connID := fs.String("conn-id", "", "Filter by connection ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, protocol)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (frame, packet, state, error)")

	path := parseWithPath(fs, args)
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		os.Exit(1)
	}

	exitOn(commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		ConnID:    *connID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
	}))
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	path := parseWithPath(fs, args)
	exitOn(commands.RunStats(path, os.Stdout))
}

// parseWithPath parses flags and returns the required trailing log
// file path.
func parseWithPath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		os.Exit(1)
	}
	return fs.Arg(0)
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
