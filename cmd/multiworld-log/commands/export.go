package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

// RunExport converts a log file to jsonl or csv. An empty output path
// writes to stdout.
func RunExport(path, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(path, w)
	case "csv":
		return exportCSV(path, w)
	default:
		return fmt.Errorf("unknown format %q (jsonl, csv)", format)
	}
}

func exportJSONL(path string, w io.Writer) error {
	r, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer r.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
}

func exportCSV(path string, w io.Writer) error {
	r, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer r.Close()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "connection_id", "direction", "layer", "category", "detail"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		if err := cw.Write([]string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.ConnectionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			eventDetail(event),
		}); err != nil {
			return err
		}
	}
}

// eventDetail condenses the type-specific payload into one column.
func eventDetail(event log.Event) string {
	switch {
	case event.Frame != nil:
		return strconv.Itoa(event.Frame.Size) + " bytes"
	case event.Packet != nil:
		return event.Packet.Cmd
	case event.StateChange != nil:
		return event.StateChange.OldState + " -> " + event.StateChange.NewState
	case event.Error != nil:
		return event.Error.Message
	default:
		return ""
	}
}
