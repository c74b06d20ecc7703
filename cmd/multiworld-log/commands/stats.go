package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

// RunStats summarizes a log file: event counts by category and
// direction, packet counts by command, and the covered time span.
func RunStats(path string, w io.Writer) error {
	r, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer r.Close()

	var (
		total      int
		byCategory = map[string]int{}
		byCmd      = map[string]int{}
		sent       int
		received   int
		errCount   int
		first      time.Time
		last       time.Time
	)

	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}

		total++
		byCategory[event.Category.String()]++
		if event.Packet != nil {
			byCmd[event.Packet.Cmd]++
		}
		if event.Category == log.CategoryFrame {
			if event.Direction == log.DirectionOut {
				sent++
			} else {
				received++
			}
		}
		if event.Error != nil {
			errCount++
		}
		if first.IsZero() || event.Timestamp.Before(first) {
			first = event.Timestamp
		}
		if event.Timestamp.After(last) {
			last = event.Timestamp
		}
	}

	fmt.Fprintf(w, "Events:   %d\n", total)
	if total > 0 {
		fmt.Fprintf(w, "Span:     %s .. %s (%s)\n",
			first.UTC().Format(time.RFC3339), last.UTC().Format(time.RFC3339),
			last.Sub(first).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Frames:   %d sent, %d received\n", sent, received)
	fmt.Fprintf(w, "Errors:   %d\n", errCount)

	fmt.Fprintln(w, "\nBy category:")
	for _, k := range sortedKeys(byCategory) {
		fmt.Fprintf(w, "  %-8s %d\n", k, byCategory[k])
	}

	if len(byCmd) > 0 {
		fmt.Fprintln(w, "\nBy command:")
		for _, k := range sortedKeys(byCmd) {
			fmt.Fprintf(w, "  %-20s %d\n", k, byCmd[k])
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
