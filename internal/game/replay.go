package game

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nova-webgames/arena/pkg/core"
)

// Frame is one recorded tick: elapsed time plus the input for that tick.
type Frame struct {
	DT    float64    `json:"dt"`
	Input core.Input `json:"input"`
}

// Run starts the match if it is Ready and feeds it frames until they run out
// or the match leaves Playing. It returns the snapshot of every tick played.
// The same frames on a fresh match yield the same event sequence.
func (g *Game) Run(frames []Frame) []core.Snapshot {
	g.Start()
	snaps := make([]core.Snapshot, 0, len(frames))
	for _, f := range frames {
		if g.phase != core.PhasePlaying {
			break
		}
		snaps = append(snaps, g.Tick(f.DT, f.Input))
	}
	return snaps
}

// ReadFrames decodes a JSON array of frames.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	if err := json.NewDecoder(r).Decode(&frames); err != nil {
		return nil, fmt.Errorf("decoding frames: %w", err)
	}
	return frames, nil
}

// ScriptedFrames builds n frames of fixed dt, shooting every shootEvery
// ticks and requesting a reload every reloadEvery ticks. Zero disables either.
func ScriptedFrames(n int, dt float64, shootEvery, reloadEvery int) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i].DT = dt
		if shootEvery > 0 && i%shootEvery == 0 {
			frames[i].Input.Shoot = true
		}
		if reloadEvery > 0 && i > 0 && i%reloadEvery == 0 {
			frames[i].Input.Reload = true
		}
	}
	return frames
}
