package gamedata

import (
	"fmt"
	"strings"
)

// GoalCount is the number of goal flags a phase tracks.
const GoalCount = 10

// Goal is one objective a phase can require.
type Goal int

const (
	GoalKillAllEnemy Goal = iota
	GoalDestroyEnemyBuildings
	GoalRescueHostages
	GoalProtectCivilians
	GoalKidnapLeader
	GoalDestroyFactory
	GoalDestroyComputer
	GoalGetCivilianHome
	GoalActivateAllSwitches
	GoalRescueHostage
)

var goalNames = [GoalCount]string{
	"kill_all_enemy",
	"destroy_enemy_buildings",
	"rescue_hostages",
	"protect_civilians",
	"kidnap_leader",
	"destroy_factory",
	"destroy_computer",
	"get_civilian_home",
	"activate_all_switches",
	"rescue_hostage",
}

func (g Goal) String() string {
	if g < 0 || int(g) >= GoalCount {
		return "unknown"
	}
	return goalNames[g]
}

// Valid reports whether g indexes a goal flag.
func (g Goal) Valid() bool {
	return g >= 0 && int(g) < GoalCount
}

// MarshalText implements encoding.TextMarshaler.
func (g Goal) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid goal %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Goal) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range goalNames {
		if n == name {
			*g = Goal(i)
			return nil
		}
	}
	return fmt.Errorf("unknown goal %q", string(b))
}

// PhaseState is where a phase is in its lifecycle.
type PhaseState int

const (
	PhaseNotStarted PhaseState = iota
	PhaseInProgress
	PhaseComplete
)

func (s PhaseState) String() string {
	switch s {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// PhaseData is the progress of the phase being played. It is rebuilt by
// Session.PhaseStart and mutated by the simulation as goals are met and
// troops die.
type PhaseData struct {
	Started bool `json:"started"`

	SoldiersRequired  int `json:"soldiersRequired"`
	SoldiersAllocated int `json:"soldiersAllocated"`
	SoldiersAvailable int `json:"soldiersAvailable"`

	// Enemy aggression is set before the map is entered.
	AggressionAverage   int16 `json:"aggressionAverage"`
	AggressionMin       int16 `json:"aggressionMin"`
	AggressionMax       int16 `json:"aggressionMax"`
	AggressionNext      int16 `json:"aggressionNext"`
	AggressionIncrement int16 `json:"aggressionIncrement"`
	AggressionCreated   int   `json:"aggressionCreated"` // aggressive units spawned so far

	GoalsRemaining [GoalCount]bool `json:"goalsRemaining"`

	TroopsDied int `json:"troopsDied"` // troops lost since the phase started

	IsComplete bool `json:"isComplete"`
}

// Clear resets every counter.
func (p *PhaseData) Clear() {
	*p = PhaseData{}
}

// Complete reports whether the phase is over: either it was explicitly marked
// complete or no goal is outstanding.
func (p *PhaseData) Complete() bool {
	if p.IsComplete {
		return true
	}
	for _, g := range p.GoalsRemaining {
		if g {
			return false
		}
	}
	return true
}

// State returns the lifecycle state.
func (p *PhaseData) State() PhaseState {
	switch {
	case !p.Started:
		return PhaseNotStarted
	case p.Complete():
		return PhaseComplete
	default:
		return PhaseInProgress
	}
}

// GoalMet clears goal g. Clearing is one-way.
func (p *PhaseData) GoalMet(g Goal) {
	if g.Valid() {
		p.GoalsRemaining[g] = false
	}
}

// Outstanding lists the goals still to be met.
func (p *PhaseData) Outstanding() []Goal {
	var out []Goal
	for i, g := range p.GoalsRemaining {
		if g {
			out = append(out, Goal(i))
		}
	}
	return out
}

// MarkComplete ends the phase regardless of goals.
func (p *PhaseData) MarkComplete() {
	p.IsComplete = true
}

// SetAggression installs the ramp for a phase whose enemies range from min
// to max. The average is the starting level.
func (p *PhaseData) SetAggression(min, max int16) {
	if min > max {
		min, max = max, min
	}
	p.AggressionMin = min
	p.AggressionMax = max
	p.AggressionAverage = int16((int(min) + int(max)) / 2)
	p.AggressionNext = p.AggressionAverage
	p.AggressionIncrement = 1
	p.AggressionCreated = 0
}

// NextAggression returns the aggression for a newly spawned enemy and moves
// the ramp on, turning around at Min and Max.
func (p *PhaseData) NextAggression() int16 {
	level := p.AggressionNext
	next := p.AggressionNext + p.AggressionIncrement
	switch {
	case next > p.AggressionMax:
		next = p.AggressionMax
		p.AggressionIncrement = -p.AggressionIncrement
	case next < p.AggressionMin:
		next = p.AggressionMin
		p.AggressionIncrement = -p.AggressionIncrement
	}
	p.AggressionNext = next
	p.AggressionCreated++
	return level
}
