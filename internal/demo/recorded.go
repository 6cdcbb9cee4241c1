package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/Garsondee/soldier-campaign/internal/config"
)

// ErrMalformed indicates demo data that could not be decoded.
var ErrMalformed = errors.New("malformed demo")

// Entry is one tick-stamped event in recording order.
type Entry struct {
	Tick uint32 `json:"tick"`
	Event
}

// Recorded is the event log of one session: the seed, the launch parameters
// and every input event keyed by the tick it was observed on.
//
// Ticks are kept sorted; events sharing a tick keep their insertion order.
type Recorded struct {
	Seed       Seed
	InputTicks uint32 // ticks covered by the recording
	Params     config.Params

	ticks  []uint32
	events map[uint32][]Event
	count  int
}

// NewRecorded returns an empty log for a session launched with params.
func NewRecorded(seed Seed, params config.Params) *Recorded {
	return &Recorded{Seed: seed, Params: params}
}

// AddEvent appends ev at tick. The event is dropped when the last entry of
// the log is at the same tick and equal to ev; earlier duplicates are not
// looked at.
func (r *Recorded) AddEvent(tick uint32, ev Event) {
	if n := len(r.ticks); n > 0 && r.ticks[n-1] == tick {
		run := r.events[tick]
		if run[len(run)-1].Equal(ev) {
			return
		}
	}
	r.insert(tick, ev)
}

// insert places ev at the end of tick's run without de-duplication.
func (r *Recorded) insert(tick uint32, ev Event) {
	if r.events == nil {
		r.events = make(map[uint32][]Event)
	}
	if _, ok := r.events[tick]; !ok {
		n := len(r.ticks)
		if n == 0 || r.ticks[n-1] < tick {
			r.ticks = append(r.ticks, tick)
		} else {
			i := sort.Search(n, func(i int) bool { return r.ticks[i] >= tick })
			r.ticks = append(r.ticks, 0)
			copy(r.ticks[i+1:], r.ticks[i:])
			r.ticks[i] = tick
		}
	}
	r.events[tick] = append(r.events[tick], ev)
	r.count++
}

// Events returns the events recorded at exactly tick, in insertion order.
// The slice is a copy and never nil.
func (r *Recorded) Events(tick uint32) []Event {
	run := r.events[tick]
	out := make([]Event, len(run))
	copy(out, run)
	return out
}

// Entries returns the whole log flattened in replay order.
func (r *Recorded) Entries() []Entry {
	out := make([]Entry, 0, r.count)
	for _, t := range r.ticks {
		for _, ev := range r.events[t] {
			out = append(out, Entry{Tick: t, Event: ev})
		}
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorded) Len() int {
	return r.count
}

// LastTick returns the highest tick holding an event, or false when empty.
func (r *Recorded) LastTick() (uint32, bool) {
	if len(r.ticks) == 0 {
		return 0, false
	}
	return r.ticks[len(r.ticks)-1], true
}

// Length returns the number of ticks a playback must run to cover the log.
func (r *Recorded) Length() uint32 {
	n := r.InputTicks
	if last, ok := r.LastTick(); ok && last+1 > n {
		n = last + 1
	}
	return n
}

// Clear empties the log and zeroes the seed and tick counter. Params are kept.
func (r *Recorded) Clear() {
	r.Seed = Seed{}
	r.InputTicks = 0
	r.ticks = nil
	r.events = nil
	r.count = 0
}

// Clone returns a deep copy that shares no storage with r.
func (r *Recorded) Clone() *Recorded {
	c := &Recorded{Seed: r.Seed, InputTicks: r.InputTicks, Params: r.Params}
	for _, e := range r.Entries() {
		c.insert(e.Tick, e.Event)
	}
	return c
}

type recordedJSON struct {
	Seed       Seed          `json:"seed"`
	InputTicks uint32        `json:"inputTicks"`
	Params     config.Params `json:"params"`
	Events     []Entry       `json:"events"`
}

// MarshalJSON implements json.Marshaler.
func (r *Recorded) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordedJSON{
		Seed:       r.Seed,
		InputTicks: r.InputTicks,
		Params:     r.Params,
		Events:     r.Entries(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. r is untouched on error.
func (r *Recorded) UnmarshalJSON(data []byte) error {
	raw := recordedJSON{Params: config.DefaultParams()}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	loaded := Recorded{Seed: raw.Seed, InputTicks: raw.InputTicks, Params: raw.Params}
	for _, e := range raw.Events {
		loaded.insert(e.Tick, e.Event)
	}
	*r = loaded
	return nil
}

// ToJSON encodes the full log.
func (r *Recorded) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON replaces r with the decoded log. r is untouched on error.
func (r *Recorded) FromJSON(data []byte) error {
	return r.UnmarshalJSON(data)
}

// Save writes the encoded log to w.
func (r *Recorded) Save(w io.Writer) error {
	data, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("encode demo: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write demo: %w", err)
	}
	return nil
}

// Load reads a log previously written by Save.
func Load(rd io.Reader) (*Recorded, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read demo: %w", err)
	}
	r := &Recorded{}
	if err := r.FromJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}
