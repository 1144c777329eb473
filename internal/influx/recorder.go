package influx

import (
	"sync/atomic"
	"time"

	"github.com/nova-webgames/arena/pkg/core"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PointWriter is the part of Manager a TickRecorder needs.
type PointWriter interface {
	WritePoint(*influxdb2_write.Point) error
}

// TickRecorder samples snapshots into tick points. It satisfies
// game.StateConsumer.
type TickRecorder struct {
	w       PointWriter
	session string
	start   time.Time
	every   uint64
	failed  atomic.Int64
}

// NewTickRecorder writes one point every `every` ticks. Points are stamped at
// start plus the match clock so replays produce identical series.
func NewTickRecorder(w PointWriter, sessionID string, start time.Time, every uint64) *TickRecorder {
	if every == 0 {
		every = 1
	}
	return &TickRecorder{w: w, session: sessionID, start: start, every: every}
}

func (r *TickRecorder) Consume(s core.Snapshot) {
	if s.Tick%r.every != 0 {
		return
	}
	at := r.start.Add(time.Duration(s.Clock * float64(time.Second)))
	if err := r.w.WritePoint(TickPoint(r.session, s, at)); err != nil {
		r.failed.Add(1)
	}
}

// Failed returns how many points could not be written.
func (r *TickRecorder) Failed() int64 {
	return r.failed.Load()
}
