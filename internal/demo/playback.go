package demo

import (
	"context"
	"errors"
	"fmt"
)

// ErrDesync is returned by a Simulation when a replayed event refers to state
// that no longer exists. Playback drops the event and carries on.
var ErrDesync = errors.New("replayed event does not match simulation state")

// Simulation is the input path a live game would feed from the real device.
type Simulation interface {
	// HandleInput delivers one event observed at tick.
	HandleInput(tick uint32, ev Event) error
	// Advance runs tick after its events were delivered. It returns false once
	// the session has ended.
	Advance(tick uint32) (bool, error)
}

// PlaybackResult summarises a playback run.
type PlaybackResult struct {
	Ticks     uint32 // ticks advanced
	Delivered int    // events accepted by the simulation
	Dropped   int    // events rejected with ErrDesync
	Ended     bool   // the simulation reported the session over
}

// Player steps through a Recorded log one tick at a time.
type Player struct {
	rec  *Recorded
	tick uint32
}

// NewPlayer starts playback of r at tick 0.
func NewPlayer(r *Recorded) *Player {
	return &Player{rec: r}
}

// Tick returns the tick the next call to Next will return.
func (p *Player) Tick() uint32 {
	return p.tick
}

// Next returns the current tick and its events, then moves to the next tick.
func (p *Player) Next() (uint32, []Event) {
	t := p.tick
	p.tick++
	return t, p.rec.Events(t)
}

// Done reports whether every recorded tick has been returned.
func (p *Player) Done() bool {
	return p.tick >= p.rec.Length()
}

// Playback drives sim through the whole log. The seed must already have been
// applied to sim. Cancelling ctx stops between ticks; everything delivered so
// far is a valid prefix of the recording.
func (r *Recorded) Playback(ctx context.Context, sim Simulation) (PlaybackResult, error) {
	var res PlaybackResult
	p := NewPlayer(r)
	for !p.Done() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		tick, events := p.Next()
		for _, ev := range events {
			err := sim.HandleInput(tick, ev)
			switch {
			case err == nil:
				res.Delivered++
			case errors.Is(err, ErrDesync):
				res.Dropped++
			default:
				return res, fmt.Errorf("tick %d: %w", tick, err)
			}
		}
		more, err := sim.Advance(tick)
		res.Ticks++
		if err != nil {
			return res, fmt.Errorf("advance tick %d: %w", tick, err)
		}
		if !more {
			res.Ended = true
			return res, nil
		}
	}
	return res, nil
}
