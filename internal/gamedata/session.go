package gamedata

import (
	"errors"
	"fmt"
	"math"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/demo"
)

var (
	// ErrNoCampaign indicates a session without campaign data.
	ErrNoCampaign = errors.New("no campaign")
	// ErrNoMission indicates the current mission or phase does not exist.
	ErrNoMission = errors.New("no active mission")
	// ErrNoDeployableSoldiers indicates a phase start with an empty roster.
	ErrNoDeployableSoldiers = errors.New("no deployable soldiers")
	// ErrPhaseNotStarted indicates PhaseNext before PhaseStart.
	ErrPhaseNotStarted = errors.New("phase not started")
	// ErrPhaseIncomplete indicates PhaseNext while goals are outstanding.
	ErrPhaseIncomplete = errors.New("phase not complete")
	// ErrEmptySlot indicates an operation on a roster slot with no recruit.
	ErrEmptySlot = errors.New("roster slot is empty")
)

// Mode says whether a session produces, consumes or ignores an event log.
type Mode int

const (
	ModeLive Mode = iota
	ModeRecord
	ModePlayback
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeRecord:
		return "record"
	case ModePlayback:
		return "playback"
	default:
		return "unknown"
	}
}

// Advance is the outcome of a successful PhaseNext.
type Advance int

const (
	AdvancePhase Advance = iota // next phase of the same mission
	AdvanceMission              // first phase of the next mission
	AdvanceCampaignComplete     // no missions left
)

func (a Advance) String() string {
	switch a {
	case AdvancePhase:
		return "phase"
	case AdvanceMission:
		return "mission"
	case AdvanceCampaignComplete:
		return "campaign_complete"
	default:
		return "unknown"
	}
}

// Session is the state of one campaign play-through. It owns the roster and
// the event log; mission and phase handles belong to the campaign and may be
// nil between missions.
//
// A Session is driven from a single goroutine. Autosave and other background
// work must use ToJSON, which produces a copy.
type Session struct {
	Phase PhaseData

	campaign     Campaign
	CampaignName string
	Recorded     *demo.Recorded
	GameTicks    uint32 // tick the next Tick call runs; also the event log key

	mission  Mission
	phaseDef PhaseDef

	MissionNumber          int // starts at 1
	MissionPhase           int // starts at 1
	MissionPhasesRemaining int
	MissionRecruitment     int

	RecruitsAvailable  int
	RecruitsAliveCount int
	RecruitNextID      int16

	Roster Roster
	heroes []Hero

	ScoreKillsAway int // player soldiers killed
	ScoreKillsHome int // enemy soldiers killed

	SavedName    string
	SavedVersion Release

	mode    Mode
	Journal *Journal
}

// New returns a session at the start position p asks for. The event log is
// seeded from p.Random and records when p.DemoRecord is set.
func New(c Campaign, p config.Params) (*Session, error) {
	if c == nil {
		return nil, ErrNoCampaign
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.DemoPlayback {
		return nil, fmt.Errorf("playback sessions are created with NewPlayback")
	}
	seed, err := demo.NewSeed(p.Random)
	if err != nil {
		return nil, err
	}
	s := &Session{campaign: c, Journal: NewJournal(false)}
	s.Clear()
	s.Recorded = demo.NewRecorded(seed, p)
	s.applyStart(p)
	if p.DemoRecord {
		s.mode = ModeRecord
	}
	return s, nil
}

// NewPlayback returns a session that replays rec. The recorded seed and
// launch parameters are applied before the first tick.
func NewPlayback(c Campaign, rec *demo.Recorded) (*Session, error) {
	if c == nil {
		return nil, ErrNoCampaign
	}
	if rec == nil || rec.Seed.IsZero() {
		return nil, fmt.Errorf("demo has no seed")
	}
	p := rec.Params
	p.DemoRecord = false
	p.DemoPlayback = true
	s := &Session{campaign: c, Journal: NewJournal(false)}
	s.Clear()
	s.Recorded = rec.Clone()
	s.Recorded.Params = p
	s.applyStart(p)
	s.mode = ModePlayback
	return s, nil
}

func (s *Session) applyStart(p config.Params) {
	if p.MissionNumber > 0 {
		s.MissionNumber = p.MissionNumber
	}
	if p.PhaseNumber > 0 {
		s.MissionPhase = p.PhaseNumber
	}
}

// Clear resets the session to a fresh campaign start. The campaign, journal
// and seed are kept; the event log is emptied.
func (s *Session) Clear() {
	s.Phase.Clear()
	s.GameTicks = 0
	s.mission = nil
	s.phaseDef = nil
	s.MissionNumber = 1
	s.MissionPhase = 1
	s.MissionPhasesRemaining = 0
	s.MissionRecruitment = 0
	s.RecruitsAvailable = 0
	s.RecruitsAliveCount = 0
	s.RecruitNextID = 0
	s.Roster.Clear()
	s.heroes = nil
	s.ScoreKillsAway = 0
	s.ScoreKillsHome = 0
	s.SavedName = ""
	s.SavedVersion = CurrentRelease
	s.CampaignName = ""
	if s.campaign != nil {
		s.CampaignName = s.campaign.Name()
		s.RecruitsAvailable = s.campaign.Recruits()
	}
	if s.Recorded != nil {
		seed := s.Recorded.Seed
		s.Recorded.Clear()
		s.Recorded.Seed = seed
	}
}

// Mode returns how the session treats its event log.
func (s *Session) Mode() Mode {
	return s.mode
}

// Campaign returns the campaign handle.
func (s *Session) Campaign() Campaign {
	return s.campaign
}

// Mission returns the active mission, or nil between missions.
func (s *Session) Mission() Mission {
	return s.mission
}

// PhaseDef returns the active phase definition, or nil between phases.
func (s *Session) PhaseDef() PhaseDef {
	return s.phaseDef
}

// Seed returns the seed all simulation randomness must derive from.
func (s *Session) Seed() demo.Seed {
	return s.Recorded.Seed
}

// Start begins the mission and phase the session is positioned on.
func (s *Session) Start() error {
	if err := s.MissionStart(); err != nil {
		return err
	}
	return s.PhaseStart()
}

// MissionStart resolves the current mission and fills empty roster slots
// with new recruits from the pool.
func (s *Session) MissionStart() error {
	if s.campaign == nil {
		return ErrNoCampaign
	}
	m, ok := s.campaign.Mission(s.MissionNumber)
	if !ok {
		s.mission = nil
		return fmt.Errorf("%w: mission %d", ErrNoMission, s.MissionNumber)
	}
	if s.MissionPhase < 1 || s.MissionPhase > m.PhaseCount() {
		s.MissionPhase = 1
	}
	s.mission = m
	s.phaseDef = nil
	s.MissionPhasesRemaining = m.PhaseCount() - (s.MissionPhase - 1)
	s.MissionRecruitment = m.Recruitment()
	for i := range s.Roster {
		s.Roster[i].PhaseCount = 0
	}
	joined := s.recruit(s.MissionRecruitment)
	s.RecruitsAliveCount = s.Roster.Deployable()
	s.note(CategoryMission, "start", NoSubject,
		fmt.Sprintf("%d %q recruits=%d", s.MissionNumber, m.Name(), joined), float64(s.MissionNumber))
	return nil
}

// recruit moves up to n recruits from the pool into empty slots.
func (s *Session) recruit(n int) int {
	joined := 0
	for joined < n && s.RecruitsAvailable > 0 {
		slot, ok := s.Roster.FirstEmpty()
		if !ok {
			break
		}
		t := NewTroop()
		t.RecruitID = s.RecruitNextID
		s.Roster[slot] = t
		s.RecruitNextID++
		s.RecruitsAvailable--
		joined++
		s.note(CategoryRoster, "recruit", t.Label(), fmt.Sprintf("slot %d", slot), float64(slot))
	}
	return joined
}

// PhaseStart builds fresh phase progress for the current phase.
func (s *Session) PhaseStart() error {
	if s.mission == nil {
		return ErrNoMission
	}
	def, ok := s.mission.Phase(s.MissionPhase)
	if !ok {
		return fmt.Errorf("%w: mission %d phase %d", ErrNoMission, s.MissionNumber, s.MissionPhase)
	}
	available := s.Roster.Deployable()
	if available == 0 {
		return ErrNoDeployableSoldiers
	}

	s.phaseDef = def
	s.Phase.Clear()
	s.Phase.Started = true
	s.Phase.SoldiersAvailable = available
	s.Phase.SoldiersRequired = def.SoldiersRequired()
	s.Phase.SoldiersAllocated = available
	if req := s.Phase.SoldiersRequired; req > 0 && req < available {
		s.Phase.SoldiersAllocated = req
	}
	s.Phase.SetAggression(def.Aggression())

	goals := def.Goals()
	if len(goals) == 0 {
		for i := range s.Phase.GoalsRemaining {
			s.Phase.GoalsRemaining[i] = true
		}
	}
	for _, g := range goals {
		if g.Valid() {
			s.Phase.GoalsRemaining[g] = true
		}
	}

	for i := range s.Roster {
		s.Roster[i].Selected = false
		s.Roster[i].Sprite = Unset
	}
	s.note(CategoryPhase, "start", NoSubject,
		fmt.Sprintf("%d.%d %q soldiers=%d aggression=%d..%d", s.MissionNumber, s.MissionPhase, def.Name(),
			s.Phase.SoldiersAllocated, s.Phase.AggressionMin, s.Phase.AggressionMax), float64(s.MissionPhase))
	return nil
}

// PhaseState returns where the current phase is in its lifecycle.
func (s *Session) PhaseState() PhaseState {
	return s.Phase.State()
}

// GoalMet clears goal g of the current phase.
func (s *Session) GoalMet(g Goal) {
	if !g.Valid() || !s.Phase.GoalsRemaining[g] {
		return
	}
	s.Phase.GoalMet(g)
	s.note(CategoryPhase, "goal_met", NoSubject, g.String(), float64(g))
}

// CompletePhase marks the current phase complete.
func (s *Session) CompletePhase() {
	if s.Phase.IsComplete {
		return
	}
	s.Phase.MarkComplete()
	s.note(CategoryPhase, "complete", NoSubject, "signalled", 0)
}

// PhaseNext moves on from a complete phase. Surviving troops count the phase;
// when the mission's last phase is done every troop is promoted, the next
// mission begins and new recruits join. The next phase is started before
// returning unless the campaign is over.
//
// The move is staged on a copy and committed only when it succeeds, so a
// failed call leaves the session and its journal as they were and may be
// retried.
func (s *Session) PhaseNext() (Advance, error) {
	switch s.Phase.State() {
	case PhaseNotStarted:
		return AdvancePhase, ErrPhaseNotStarted
	case PhaseInProgress:
		return AdvancePhase, fmt.Errorf("%w: outstanding %v", ErrPhaseIncomplete, s.Phase.Outstanding())
	}

	staged := *s
	staged.Journal = s.Journal.fork()
	adv, err := staged.advance()
	if err != nil {
		return adv, err
	}
	pending := staged.Journal
	staged.Journal = s.Journal
	*s = staged
	s.Journal.merge(pending)
	return adv, nil
}

// advance performs PhaseNext on s without any rollback.
func (s *Session) advance() (Advance, error) {
	for i := range s.Roster {
		t := &s.Roster[i]
		if !t.Empty() && t.PhaseCount < 0xFF {
			t.PhaseCount++
		}
	}
	s.note(CategoryPhase, "next", NoSubject,
		fmt.Sprintf("%d.%d done", s.MissionNumber, s.MissionPhase), float64(s.MissionPhase))

	if s.MissionPhasesRemaining--; s.MissionPhasesRemaining > 0 {
		s.MissionPhase++
		return AdvancePhase, s.PhaseStart()
	}

	s.promoteAll()
	s.MissionNumber++
	s.MissionPhase = 1
	s.Phase.Clear()
	s.phaseDef = nil
	s.mission = nil
	if s.campaign == nil || s.MissionNumber > s.campaign.MissionCount() {
		s.note(CategoryMission, "campaign_complete", NoSubject, s.CampaignName, float64(s.MissionNumber-1))
		return AdvanceCampaignComplete, nil
	}
	if err := s.MissionStart(); err != nil {
		return AdvanceMission, err
	}
	return AdvanceMission, s.PhaseStart()
}

func (s *Session) promoteAll() {
	for i := range s.Roster {
		t := &s.Roster[i]
		if t.Empty() {
			continue
		}
		before := t.Rank
		t.Promote()
		if t.Rank != before {
			s.note(CategoryRoster, "promote", t.Label(),
				fmt.Sprintf("rank %d → %d", before, t.Rank), float64(t.Rank))
		}
		t.PhaseCount = 0
	}
}

// SoldierDied records the troop in slot as a hero and removes it from the
// roster.
func (s *Session) SoldierDied(slot int) (Hero, error) {
	if slot < 0 || slot >= RosterSize {
		return Hero{}, fmt.Errorf("slot %d out of range", slot)
	}
	t := s.Roster[slot]
	if t.Empty() {
		return Hero{}, fmt.Errorf("%w: slot %d", ErrEmptySlot, slot)
	}
	h := NewHero(t)
	s.heroes = append(s.heroes, h)
	s.ScoreKillsAway++
	s.Phase.TroopsDied++
	if s.RecruitsAliveCount > 0 {
		s.RecruitsAliveCount--
	}
	s.Roster.Vacate(slot)
	s.note(CategoryRoster, "died", t.Label(),
		fmt.Sprintf("rank %d kills %d", t.Rank, t.Kills), float64(t.Kills))
	return h, nil
}

// EnemyKilled credits an enemy kill to the troop in slot. A negative slot
// credits the squad without a shooter.
func (s *Session) EnemyKilled(slot int) {
	s.ScoreKillsHome++
	if slot < 0 || slot >= RosterSize {
		return
	}
	t := &s.Roster[slot]
	if !t.Empty() && t.Kills < 0xFFFF {
		t.Kills++
	}
}

// Heroes returns the fallen in order of death.
func (s *Session) Heroes() []Hero {
	out := make([]Hero, len(s.heroes))
	copy(out, s.heroes)
	return out
}

// SoldierSort returns roster slots in display order.
func (s *Session) SoldierSort() []int {
	return s.Roster.SortOrder()
}

// SoldierClear empties every roster slot.
func (s *Session) SoldierClear() {
	s.Roster.Clear()
	s.RecruitsAliveCount = 0
}

// Tick advances the session one tick and returns the events the simulation
// must handle this tick. Recording sessions log observed and hand back what
// was logged; playback sessions ignore observed and hand back the recording.
// A session that has used up the tick counter stops advancing and delivers
// nothing.
func (s *Session) Tick(observed []demo.Event) []demo.Event {
	if s.GameTicks == math.MaxUint32 {
		return nil
	}
	tick := s.GameTicks
	var out []demo.Event
	switch s.mode {
	case ModeRecord:
		for _, ev := range observed {
			s.Recorded.AddEvent(tick, ev)
		}
		s.Recorded.InputTicks = tick + 1
		out = s.Recorded.Events(tick)
	case ModePlayback:
		out = s.Recorded.Events(tick)
	default:
		out = make([]demo.Event, len(observed))
		copy(out, observed)
	}
	s.GameTicks++
	return out
}

// PlaybackDone reports whether a playback session has consumed its recording.
func (s *Session) PlaybackDone() bool {
	return s.mode == ModePlayback && s.GameTicks >= s.Recorded.Length()
}

// DropEvent records that a replayed event was discarded because it no longer
// matched the simulation.
func (s *Session) DropEvent(tick uint32, ev demo.Event, reason string) {
	s.Journal.Record(JournalEntry{
		Tick:     tick,
		Category: CategoryDemo,
		Event:    "desync_drop",
		Detail:   fmt.Sprintf("%s: %s", ev, reason),
	})
}

// note journals a progression event at the current tick.
func (s *Session) note(c Category, event, subject, detail string, v float64) {
	s.Journal.Record(JournalEntry{
		Tick:     s.GameTicks,
		Category: c,
		Event:    event,
		Subject:  subject,
		Detail:   detail,
		Value:    v,
	})
}
