package skirmish

import (
	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/demo"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
)

// Harness is a headless driver for a session and its skirmish, used by tests
// in place of the ebiten host. It feeds the same Step path with scripted
// input.
type Harness struct {
	Campaign gamedata.Campaign
	Params   config.Params
	Session  *gamedata.Session
	Sim      *Sim
	Ticks    int

	verbose    bool
	recording  *demo.Recorded
	autopilot  int // click every n ticks; 0 is off
	strayEvery int // click empty ground every n ticks; 0 is off
	scripted   map[uint32][]demo.Event
}

// Option configures a Harness.
type Option func(*Harness)

// WithCampaign sets the campaign. The default is gamedata.DefaultCampaign.
func WithCampaign(c gamedata.Campaign) Option {
	return func(h *Harness) { h.Campaign = c }
}

// WithParams sets the launch parameters.
func WithParams(p config.Params) Option {
	return func(h *Harness) { h.Params = p }
}

// WithRecording puts the session in record mode writing to file.
func WithRecording(file string) Option {
	return func(h *Harness) {
		h.Params.DemoRecord = true
		h.Params.DemoPlayback = false
		h.Params.DemoFile = file
	}
}

// WithPlayback replays rec instead of taking scripted input.
func WithPlayback(rec *demo.Recorded) Option {
	return func(h *Harness) { h.recording = rec }
}

// WithVerbose enables per-tick journal entries.
func WithVerbose(v bool) Option {
	return func(h *Harness) { h.verbose = v }
}

// WithAutopilot clicks the Autopilot target every n ticks.
func WithAutopilot(n int) Option {
	return func(h *Harness) { h.autopilot = n }
}

// WithStrayClicks clicks a corner of the field with nothing in it every n
// ticks.
func WithStrayClicks(n int) Option {
	return func(h *Harness) { h.strayEvery = n }
}

// WithInput delivers ev as observed input on tick.
func WithInput(tick uint32, ev demo.Event) Option {
	return func(h *Harness) {
		if h.scripted == nil {
			h.scripted = make(map[uint32][]demo.Event)
		}
		h.scripted[tick] = append(h.scripted[tick], ev)
	}
}

// NewHarness builds the session and sim described by opts.
func NewHarness(opts ...Option) (*Harness, error) {
	h := &Harness{
		Campaign: gamedata.DefaultCampaign(),
		Params:   config.DefaultParams(),
	}
	for _, o := range opts {
		o(h)
	}

	var (
		sess *gamedata.Session
		err  error
	)
	if h.recording != nil {
		sess, err = gamedata.NewPlayback(h.Campaign, h.recording)
	} else {
		sess, err = gamedata.New(h.Campaign, h.Params)
	}
	if err != nil {
		return nil, err
	}
	sess.Journal = gamedata.NewJournal(h.verbose)
	h.Session = sess

	sim, err := New(sess)
	if err != nil {
		return nil, err
	}
	h.Sim = sim
	return h, nil
}

// observed returns the scripted input for the next tick.
func (h *Harness) observed() []demo.Event {
	tick := h.Session.GameTicks
	evs := append([]demo.Event(nil), h.scripted[tick]...)
	if h.autopilot > 0 && int(tick)%h.autopilot == 0 {
		if ev, ok := h.Sim.Autopilot(); ok {
			evs = append(evs, ev)
		}
	}
	if h.strayEvery > 0 && int(tick)%h.strayEvery == 0 {
		evs = append(evs, demo.Click(demo.EventMouseLeftDown, 1, FieldHeight-1))
	}
	return evs
}

// StepOnce runs one tick. It returns false when the skirmish has ended or a
// playback has run out of recording.
func (h *Harness) StepOnce() (bool, error) {
	if h.Session.Mode() == gamedata.ModePlayback && h.Session.PlaybackDone() {
		return false, nil
	}
	more, err := h.Sim.Step(h.observed())
	h.Ticks++
	return more, err
}

// RunTicks advances up to n ticks, stopping early if the skirmish ends.
func (h *Harness) RunTicks(n int) error {
	for i := 0; i < n; i++ {
		more, err := h.StepOnce()
		if err != nil || !more {
			return err
		}
	}
	return nil
}

// RunUntil advances up to maxTicks, stopping once predicate holds. It returns
// the tick the predicate was satisfied on, or -1.
func (h *Harness) RunUntil(predicate func(*Harness) bool, maxTicks int) (int, error) {
	for i := 0; i < maxTicks; i++ {
		if predicate(h) {
			return h.Ticks, nil
		}
		more, err := h.StepOnce()
		if err != nil {
			return -1, err
		}
		if !more {
			break
		}
	}
	if predicate(h) {
		return h.Ticks, nil
	}
	return -1, nil
}

// Ended reports whether the skirmish has reached an outcome.
func Ended(h *Harness) bool {
	return h.Sim.Outcome() != OutcomeInProgress
}
