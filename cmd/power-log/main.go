// Command power-log is a tool for viewing and analyzing power event logs.
//
// Log files are written by powerd when it runs with -event-log.
//
// Usage:
//
//	power-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	power-log view powerd.plog
//
//	# View only running lock events
//	power-log view --component runninglock powerd.plog
//
//	# View refused transitions
//	power-log view --category transit powerd.plog
//
//	# Export to CSV
//	power-log export --format csv -o events.csv powerd.plog
//
//	# Keep one daemon run
//	power-log filter --session 3f2a9c1e -o run.plog powerd.plog
//
//	# Show statistics
//	power-log stats powerd.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/powerpolicy/powermgr-go/cmd/power-log/commands"
)

const usage = `power-log - Power Event Log Analyzer

Usage:
  power-log <command> [flags] <file.plog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "power-log <command> -help" for more information about a command.
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

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parsePath parses args and returns the single log file argument.
func parsePath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `power-log view - View log file in human-readable format

Usage:
  power-log view [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	component := fs.String("component", "", "Filter by component (statemachine, runninglock, service)")
	category := fs.String("category", "", "Filter by category (state, desync, transit, lock, error)")

	path := parsePath(fs, args)

	var filter commands.ViewFilter
	if *component != "" {
		c, err := commands.ParseComponentFlag(*component)
		if err != nil {
			fail(err)
		}
		filter.Component = &c
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `power-log export - Export log file to JSON or CSV format

Usage:
  power-log export [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parsePath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `power-log filter - Filter log file and write to new file

Usage:
  power-log filter [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	session := fs.String("session", "", "Filter by session ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	component := fs.String("component", "", "Filter by component (statemachine, runninglock, service)")
	category := fs.String("category", "", "Filter by category (state, desync, transit, lock, error)")

	path := parsePath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		SessionID: *session,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Component: *component,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Fprintf(os.Stderr, "%d events written to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `power-log stats - Show statistics about the log file

Usage:
  power-log stats <file.plog>

`)
	}

	path := parsePath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
