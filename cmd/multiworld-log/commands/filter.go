package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/multiworld-protocol/multiworld-go/pkg/log"
)

// FilterOptions specify the filter command's criteria. Empty fields
// match everything.
type FilterOptions struct {
	Output    string
	ConnID    string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// buildFilter converts string options into a log.Filter.
func (o FilterOptions) buildFilter() (log.Filter, error) {
	filter := log.Filter{ConnectionID: o.ConnID}

	if o.Layer != "" {
		l, err := ParseLayerFlag(o.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := ParseDirectionFlag(o.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// RunFilter copies events matching the options into a new log file.
func RunFilter(path string, opts FilterOptions) error {
	filter, err := opts.buildFilter()
	if err != nil {
		return err
	}

	r, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer r.Close()

	out, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	enc := log.NewEncoder(out)
	kept := 0
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		kept++
	}

	fmt.Printf("Wrote %d event(s) to %s\n", kept, opts.Output)
	return nil
}
