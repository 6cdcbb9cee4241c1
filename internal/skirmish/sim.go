package skirmish

import (
	"errors"
	"fmt"
	"math"

	"github.com/Garsondee/soldier-campaign/internal/demo"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
)

// Enemy is one hostile on the field.
type Enemy struct {
	ID         int
	X, Y       int16
	Aggression int16
	Alive      bool
	cooldown   int
}

// Objective is a clickable marker for a phase goal other than killing every
// enemy.
type Objective struct {
	Goal gamedata.Goal
	X, Y int16
	Done bool
}

// Sim is a small deterministic skirmish driven entirely by replayable input.
// It spawns enemies along the phase aggression ramp, turns left clicks into
// squad fire and reports kills, deaths and goals through the session.
//
// Sim implements demo.Simulation.
type Sim struct {
	session *gamedata.Session
	combat  *Combat

	enemies    []Enemy
	objectives []Objective
	nextID     int
	quota      int
	spawned    int
	killed     int
	spawnTimer int

	outcome Outcome
	dropped int
}

var _ demo.Simulation = (*Sim)(nil)

// New attaches a skirmish to sess, starting the session's current phase if it
// has not been started yet. The RNG is derived from the session seed.
func New(sess *gamedata.Session) (*Sim, error) {
	if sess == nil {
		return nil, errors.New("skirmish: nil session")
	}
	if sess.PhaseState() == gamedata.PhaseNotStarted {
		if err := sess.Start(); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}
	s := &Sim{
		session: sess,
		combat:  NewCombat(sess.Seed().Rand()),
	}
	s.beginPhase()
	return s, nil
}

// Session returns the session the sim reports to.
func (s *Sim) Session() *gamedata.Session { return s.session }

// Outcome reports whether the run is still going.
func (s *Sim) Outcome() Outcome { return s.outcome }

// Dropped counts input events that found nothing to act on.
func (s *Sim) Dropped() int { return s.dropped }

// Enemies returns a copy of the enemies on the field, dead ones included.
func (s *Sim) Enemies() []Enemy {
	out := make([]Enemy, len(s.enemies))
	copy(out, s.enemies)
	return out
}

// Objectives returns a copy of the phase objective markers.
func (s *Sim) Objectives() []Objective {
	out := make([]Objective, len(s.objectives))
	copy(out, s.objectives)
	return out
}

// Remaining is how many enemies of the phase quota are still to be killed.
func (s *Sim) Remaining() int {
	return s.quota - s.killed
}

// Debrief summarises the run so far.
func (s *Sim) Debrief() Debrief {
	return Summarize(s.session, s.outcome, s.dropped)
}

func (s *Sim) beginPhase() {
	p := &s.session.Phase
	s.enemies = s.enemies[:0]
	s.objectives = s.objectives[:0]
	s.quota = int(p.AggressionMax)/2 + 2
	s.spawned = 0
	s.killed = 0
	s.spawnTimer = 0
	for g := gamedata.Goal(0); int(g) < gamedata.GoalCount; g++ {
		if g == gamedata.GoalKillAllEnemy || !p.GoalsRemaining[g] {
			continue
		}
		x, y := s.combat.Position()
		s.objectives = append(s.objectives, Objective{Goal: g, X: x, Y: y})
	}
}

// deployed returns the roster slots on the field: the best troops first, up
// to the phase allocation.
func (s *Sim) deployed() []int {
	n := s.session.Phase.SoldiersAllocated
	var out []int
	for _, slot := range s.session.SoldierSort() {
		if len(out) == n || s.session.Roster[slot].Empty() {
			break
		}
		out = append(out, slot)
	}
	return out
}

// Shooter returns the slot that fires on the next left click.
func (s *Sim) Shooter() (int, bool) {
	slots := s.deployed()
	if len(slots) == 0 {
		return 0, false
	}
	for _, slot := range slots {
		if s.session.Roster[slot].Selected {
			return slot, true
		}
	}
	return slots[0], true
}

// HandleInput applies one input event. Left click fires at the nearest live
// enemy or claims an objective under the cursor; right click hands the rifle
// to the next deployed troop. A click with nothing to act on returns
// demo.ErrDesync.
func (s *Sim) HandleInput(tick uint32, ev demo.Event) error {
	if s.outcome != OutcomeInProgress {
		return s.drop(tick, ev, "skirmish over")
	}
	switch ev.Input.Type {
	case demo.EventMouseLeftDown:
		return s.fire(tick, ev)
	case demo.EventMouseRightDown:
		return s.cycleShooter(tick, ev)
	}
	return nil
}

func (s *Sim) fire(tick uint32, ev demo.Event) error {
	if i, ok := s.enemyAt(ev.MouseX, ev.MouseY); ok {
		slot, ok := s.Shooter()
		if !ok {
			return s.drop(tick, ev, "no shooter")
		}
		e := &s.enemies[i]
		label := s.session.Roster[slot].Label()
		if !s.combat.TroopHits(s.session.Roster[slot].Rank) {
			s.trace(tick, "miss", label, fmt.Sprintf("enemy %d", e.ID), 0)
			return nil
		}
		e.Alive = false
		s.killed++
		s.session.EnemyKilled(slot)
		s.note(tick, "kill", label,
			fmt.Sprintf("enemy %d (%d/%d)", e.ID, s.killed, s.quota), float64(s.killed))
		if s.killed >= s.quota {
			s.session.GoalMet(gamedata.GoalKillAllEnemy)
		}
		return nil
	}
	for i := range s.objectives {
		o := &s.objectives[i]
		if o.Done || !within(o.X, o.Y, ev.MouseX, ev.MouseY, HitRadius) {
			continue
		}
		o.Done = true
		s.session.GoalMet(o.Goal)
		return nil
	}
	return s.drop(tick, ev, "no target")
}

func (s *Sim) enemyAt(x, y int16) (int, bool) {
	best, bestD := -1, HitRadius*HitRadius+1
	for i, e := range s.enemies {
		if !e.Alive {
			continue
		}
		dx, dy := int(e.X)-int(x), int(e.Y)-int(y)
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

func (s *Sim) cycleShooter(tick uint32, ev demo.Event) error {
	slots := s.deployed()
	if len(slots) < 2 {
		return s.drop(tick, ev, "nobody to hand over to")
	}
	cur, _ := s.Shooter()
	next := slots[0]
	for i, slot := range slots {
		if slot == cur {
			next = slots[(i+1)%len(slots)]
			break
		}
	}
	for i := range s.session.Roster {
		s.session.Roster[i].Selected = i == next
	}
	s.trace(tick, "select", s.session.Roster[next].Label(), "", float64(next))
	return nil
}

func (s *Sim) drop(tick uint32, ev demo.Event, reason string) error {
	s.dropped++
	if s.session.Mode() == gamedata.ModePlayback {
		s.session.DropEvent(tick, ev, reason)
	} else {
		s.trace(tick, "ignored", gamedata.NoSubject, reason, 0)
	}
	return fmt.Errorf("%w: %s", demo.ErrDesync, reason)
}

// Advance runs the world for tick: a finished phase hands over to the next
// one, enemies arrive and shoot back. It returns false once the campaign is
// won or the squad is gone.
func (s *Sim) Advance(tick uint32) (bool, error) {
	if tick < math.MaxUint32 && s.session.GameTicks <= tick {
		s.session.GameTicks = tick + 1
	}
	if s.outcome != OutcomeInProgress {
		return false, nil
	}
	if s.session.PhaseState() == gamedata.PhaseComplete {
		adv, err := s.session.PhaseNext()
		switch {
		case errors.Is(err, gamedata.ErrNoDeployableSoldiers):
			return s.end(tick, OutcomeSquadLost), nil
		case err != nil:
			return false, err
		case adv == gamedata.AdvanceCampaignComplete:
			return s.end(tick, OutcomeCampaignWon), nil
		}
		s.beginPhase()
	}

	s.spawn(tick)
	s.enemyFire(tick)

	if s.session.Roster.Deployable() == 0 {
		return s.end(tick, OutcomeSquadLost), nil
	}
	return true, nil
}

func (s *Sim) end(tick uint32, o Outcome) bool {
	s.outcome = o
	s.note(tick, "end", gamedata.NoSubject, o.String(), float64(s.session.MissionNumber))
	return false
}

func (s *Sim) spawn(tick uint32) {
	if s.spawned >= s.quota {
		return
	}
	if s.spawnTimer > 0 {
		s.spawnTimer--
		return
	}
	aggression := s.session.Phase.NextAggression()
	x, y := s.combat.Position()
	s.enemies = append(s.enemies, Enemy{
		ID:         s.nextID,
		X:          x,
		Y:          y,
		Aggression: aggression,
		Alive:      true,
		cooldown:   fireInterval(aggression),
	})
	s.nextID++
	s.spawned++
	s.spawnTimer = spawnInterval(aggression)
	s.trace(tick, "spawn", gamedata.NoSubject,
		fmt.Sprintf("enemy at (%d,%d) aggression %d", x, y, aggression), float64(aggression))
}

func (s *Sim) enemyFire(tick uint32) {
	for i := range s.enemies {
		e := &s.enemies[i]
		if !e.Alive {
			continue
		}
		if e.cooldown--; e.cooldown > 0 {
			continue
		}
		e.cooldown = fireInterval(e.Aggression)
		slots := s.deployed()
		if len(slots) == 0 {
			return
		}
		slot := slots[s.combat.Pick(len(slots))]
		if !s.combat.EnemyHits(e.Aggression, s.session.Roster[slot].Rank) {
			continue
		}
		h, err := s.session.SoldierDied(slot)
		if err != nil {
			continue
		}
		s.note(tick, "killed_by", fmt.Sprintf("R%d", h.RecruitID),
			fmt.Sprintf("enemy %d", e.ID), float64(e.ID))
	}
}

// Step runs one host tick. observed goes through the session, which records
// it or swaps in the recording, and the resulting events drive the sim.
func (s *Sim) Step(observed []demo.Event) (bool, error) {
	tick := s.session.GameTicks
	for _, ev := range s.session.Tick(observed) {
		if err := s.HandleInput(tick, ev); err != nil && !errors.Is(err, demo.ErrDesync) {
			return false, err
		}
	}
	return s.Advance(tick)
}

// Autopilot returns the click a competent player would make now: the oldest
// live enemy, then the first open objective.
func (s *Sim) Autopilot() (demo.Event, bool) {
	for _, e := range s.enemies {
		if e.Alive {
			return demo.Click(demo.EventMouseLeftDown, e.X, e.Y), true
		}
	}
	for _, o := range s.objectives {
		if !o.Done {
			return demo.Click(demo.EventMouseLeftDown, o.X, o.Y), true
		}
	}
	return demo.Event{}, false
}

func (s *Sim) note(tick uint32, event, subject, detail string, v float64) {
	s.session.Journal.Record(gamedata.JournalEntry{
		Tick:     tick,
		Category: gamedata.CategorySkirmish,
		Event:    event,
		Subject:  subject,
		Detail:   detail,
		Value:    v,
	})
}

// trace is note for per-tick detail, kept by verbose journals only.
func (s *Sim) trace(tick uint32, event, subject, detail string, v float64) {
	s.session.Journal.Trace(gamedata.JournalEntry{
		Tick:     tick,
		Category: gamedata.CategorySkirmish,
		Event:    event,
		Subject:  subject,
		Detail:   detail,
		Value:    v,
	})
}
