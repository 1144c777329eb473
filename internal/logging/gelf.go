package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfHandler dials a Graylog GELF UDP input and returns a JSON slog
// handler writing to it. Each record becomes one GELF message whose short
// message is the JSON line. Close the returned writer on shutdown.
func NewGelfHandler(addr, level, facility string) (slog.Handler, *gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to graylog at %s: %w", addr, err)
	}
	if facility != "" {
		w.Facility = facility
	}
	return slog.NewJSONHandler(w, handlerOptions(parseLevel(level))), w, nil
}
