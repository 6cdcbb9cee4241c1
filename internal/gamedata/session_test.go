package gamedata

import (
	"errors"
	"math"
	"testing"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/demo"
)

// twoMissionCampaign has a one-phase mission followed by a two-phase mission.
func twoMissionCampaign() *CampaignData {
	return &CampaignData{
		Title:       "Test Campaign",
		RecruitPool: 10,
		Missions: []MissionData{
			{Title: "M1", Recruits: 3, Phases: []PhaseSpec{
				{Title: "M1P1", AggressionMin: 1, AggressionMax: 3, Objectives: []Goal{GoalKillAllEnemy}},
			}},
			{Title: "M2", Recruits: 2, Phases: []PhaseSpec{
				{Title: "M2P1", AggressionMin: 2, AggressionMax: 6, Objectives: []Goal{GoalKillAllEnemy}, Required: 2},
				{Title: "M2P2", AggressionMin: 4, AggressionMax: 8, Objectives: []Goal{GoalKillAllEnemy, GoalDestroyFactory}},
			}},
		},
	}
}

func newStartedSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(twoMissionCampaign(), config.DefaultParams())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestNew_RequiresCampaign(t *testing.T) {
	if _, err := New(nil, config.DefaultParams()); !errors.Is(err, ErrNoCampaign) {
		t.Fatalf("expected ErrNoCampaign, got %v", err)
	}
}

func TestNew_RejectsInvalidParams(t *testing.T) {
	p := config.Params{DemoRecord: true}
	if _, err := New(twoMissionCampaign(), p); !errors.Is(err, config.ErrDemoFileRequired) {
		t.Fatalf("expected ErrDemoFileRequired, got %v", err)
	}
}

func TestMissionStart_Recruits(t *testing.T) {
	s := newStartedSession(t)
	if got := s.Roster.Deployable(); got != 3 {
		t.Fatalf("deployable = %d, want 3", got)
	}
	if s.RecruitsAvailable != 7 || s.RecruitNextID != 3 {
		t.Fatalf("pool=%d next=%d, want 7/3", s.RecruitsAvailable, s.RecruitNextID)
	}
	for i := 0; i < 3; i++ {
		if s.Roster[i].RecruitID != int16(i) {
			t.Fatalf("slot %d recruit = %d, want %d", i, s.Roster[i].RecruitID, i)
		}
	}
	if s.Journal.Count(CategoryRoster, "recruit") != 3 {
		t.Fatalf("journal recruits = %d\n%s", s.Journal.Count(CategoryRoster, "recruit"), s.Journal.Format())
	}
}

func TestPhaseStart_SetsProgress(t *testing.T) {
	s := newStartedSession(t)
	p := s.Phase
	if p.SoldiersAvailable != 3 || p.SoldiersAllocated != 3 {
		t.Fatalf("available=%d allocated=%d, want 3/3", p.SoldiersAvailable, p.SoldiersAllocated)
	}
	if p.AggressionMin != 1 || p.AggressionMax != 3 || p.AggressionNext != 2 {
		t.Fatalf("aggression = %d..%d next %d", p.AggressionMin, p.AggressionMax, p.AggressionNext)
	}
	if !p.GoalsRemaining[GoalKillAllEnemy] {
		t.Fatal("kill-all goal not outstanding")
	}
	if p.TroopsDied != 0 || p.IsComplete {
		t.Fatalf("phase not fresh: %+v", p)
	}
	if s.PhaseState() != PhaseInProgress {
		t.Fatalf("state = %s", s.PhaseState())
	}
}

func TestPhaseStart_NoMission(t *testing.T) {
	s, err := New(twoMissionCampaign(), config.DefaultParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.PhaseStart(); !errors.Is(err, ErrNoMission) {
		t.Fatalf("expected ErrNoMission, got %v", err)
	}
}

func TestPhaseStart_NoSoldiers(t *testing.T) {
	s := newStartedSession(t)
	s.SoldierClear()
	before := s.Phase
	if err := s.PhaseStart(); !errors.Is(err, ErrNoDeployableSoldiers) {
		t.Fatalf("expected ErrNoDeployableSoldiers, got %v", err)
	}
	if s.Phase != before {
		t.Fatalf("phase progress rewritten by a failed start: %+v", s.Phase)
	}
}

func TestPhaseNext_RejectsIncomplete(t *testing.T) {
	s := newStartedSession(t)
	if _, err := s.PhaseNext(); !errors.Is(err, ErrPhaseIncomplete) {
		t.Fatalf("expected ErrPhaseIncomplete, got %v", err)
	}
	if s.MissionNumber != 1 || s.MissionPhase != 1 {
		t.Fatalf("position moved on failure: %d.%d", s.MissionNumber, s.MissionPhase)
	}
}

func TestPhaseNext_RejectsNotStarted(t *testing.T) {
	s, _ := New(twoMissionCampaign(), config.DefaultParams())
	if _, err := s.PhaseNext(); !errors.Is(err, ErrPhaseNotStarted) {
		t.Fatalf("expected ErrPhaseNotStarted, got %v", err)
	}
}

func TestPhaseNext_ExplicitCompletionAccepted(t *testing.T) {
	s := newStartedSession(t)
	s.CompletePhase()
	adv, err := s.PhaseNext()
	if err != nil {
		t.Fatalf("phase next: %v", err)
	}
	if adv != AdvanceMission {
		t.Fatalf("advance = %s, want mission", adv)
	}
}

func TestPhaseNext_FullCampaign(t *testing.T) {
	s := newStartedSession(t)
	s.Roster[0].Rank = 14

	// Mission 1 has one phase: completing it promotes and moves to mission 2.
	s.GoalMet(GoalKillAllEnemy)
	adv, err := s.PhaseNext()
	if err != nil || adv != AdvanceMission {
		t.Fatalf("phase next = %s, %v; want mission", adv, err)
	}
	if s.MissionNumber != 2 || s.MissionPhase != 1 {
		t.Fatalf("position = %d.%d, want 2.1", s.MissionNumber, s.MissionPhase)
	}
	if s.Roster[0].Rank != 15 || s.Roster[1].Rank != 1 {
		t.Fatalf("ranks after mission 1 = %d,%d; want 15,1", s.Roster[0].Rank, s.Roster[1].Rank)
	}
	if s.Roster[1].PhaseCount != 0 {
		t.Fatalf("phase count not reset at mission end: %d", s.Roster[1].PhaseCount)
	}
	if got := s.Roster.Deployable(); got != 5 {
		t.Fatalf("deployable after mission 2 recruitment = %d, want 5", got)
	}
	if s.Phase.SoldiersAllocated != 2 || s.Phase.SoldiersRequired != 2 {
		t.Fatalf("allocated=%d required=%d, want 2/2", s.Phase.SoldiersAllocated, s.Phase.SoldiersRequired)
	}

	// Mission 2 phase 1 -> phase 2; troops count the phase but are not promoted yet.
	s.GoalMet(GoalKillAllEnemy)
	adv, err = s.PhaseNext()
	if err != nil || adv != AdvancePhase {
		t.Fatalf("phase next = %s, %v; want phase", adv, err)
	}
	if s.MissionPhase != 2 || s.Roster[1].PhaseCount != 1 || s.Roster[1].Rank != 1 {
		t.Fatalf("phase=%d pc=%d rank=%d", s.MissionPhase, s.Roster[1].PhaseCount, s.Roster[1].Rank)
	}
	if !s.Phase.GoalsRemaining[GoalDestroyFactory] {
		t.Fatal("phase 2 goals not installed")
	}

	s.GoalMet(GoalKillAllEnemy)
	if _, err := s.PhaseNext(); !errors.Is(err, ErrPhaseIncomplete) {
		t.Fatalf("expected ErrPhaseIncomplete with factory outstanding, got %v", err)
	}
	s.GoalMet(GoalDestroyFactory)
	adv, err = s.PhaseNext()
	if err != nil || adv != AdvanceCampaignComplete {
		t.Fatalf("phase next = %s, %v; want campaign_complete", adv, err)
	}
	if s.Roster[1].Rank != 3 {
		t.Fatalf("rank after two-phase mission = %d, want 3", s.Roster[1].Rank)
	}
	if s.Mission() != nil || s.PhaseDef() != nil {
		t.Fatal("mission handles kept after campaign end")
	}
}

// gapCampaign wraps a campaign so that one mission, or one phase number of
// every mission, cannot be resolved. Zero disables either gap.
type gapCampaign struct {
	Campaign
	mission int
	phase   int
}

func (c gapCampaign) Mission(n int) (Mission, bool) {
	if n == c.mission {
		return nil, false
	}
	m, ok := c.Campaign.Mission(n)
	if !ok || c.phase == 0 {
		return m, ok
	}
	return gapMission{Mission: m, phase: c.phase}, true
}

type gapMission struct {
	Mission
	phase int
}

func (m gapMission) Phase(n int) (PhaseDef, bool) {
	if n == m.phase {
		return nil, false
	}
	return m.Mission.Phase(n)
}

// position is the part of a session PhaseNext may change.
type position struct {
	mission, phase, remaining int
	available                 int
	state                     PhaseState
	roster                    Roster
	entries                   int
}

func positionOf(s *Session) position {
	return position{
		mission:   s.MissionNumber,
		phase:     s.MissionPhase,
		remaining: s.MissionPhasesRemaining,
		available: s.RecruitsAvailable,
		state:     s.PhaseState(),
		roster:    s.Roster,
		entries:   s.Journal.Len(),
	}
}

// toSecondMission completes mission 1 so s sits at the start of mission 2.
func toSecondMission(t *testing.T, s *Session) {
	t.Helper()
	s.GoalMet(GoalKillAllEnemy)
	if adv, err := s.PhaseNext(); err != nil || adv != AdvanceMission {
		t.Fatalf("phase next = %s, %v; want mission", adv, err)
	}
}

func TestPhaseNext_NoSurvivorsLeavesSessionUnchanged(t *testing.T) {
	s := newStartedSession(t)
	toSecondMission(t, s)
	s.GoalMet(GoalKillAllEnemy)
	for slot := range s.Roster {
		if !s.Roster[slot].Empty() {
			if _, err := s.SoldierDied(slot); err != nil {
				t.Fatalf("died %d: %v", slot, err)
			}
		}
	}
	before := positionOf(s)
	for i := 0; i < 3; i++ {
		if _, err := s.PhaseNext(); !errors.Is(err, ErrNoDeployableSoldiers) {
			t.Fatalf("attempt %d: expected ErrNoDeployableSoldiers, got %v", i, err)
		}
		if got := positionOf(s); got != before {
			t.Fatalf("attempt %d changed the session:\n got %+v\nwant %+v", i, got, before)
		}
	}
	if before.state != PhaseComplete || s.Journal.Count(CategoryPhase, "next") != 1 {
		t.Fatalf("state=%s phase.next=%d", before.state, s.Journal.Count(CategoryPhase, "next"))
	}
}

func TestPhaseNext_MissingPhaseKeepsPhaseCounts(t *testing.T) {
	s, err := New(gapCampaign{Campaign: twoMissionCampaign(), phase: 2}, config.DefaultParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	toSecondMission(t, s)
	s.GoalMet(GoalKillAllEnemy)
	before := positionOf(s)
	for i := 0; i < 2; i++ {
		if _, err := s.PhaseNext(); !errors.Is(err, ErrNoMission) {
			t.Fatalf("attempt %d: expected ErrNoMission, got %v", i, err)
		}
		if got := positionOf(s); got != before {
			t.Fatalf("attempt %d changed the session:\n got %+v\nwant %+v", i, got, before)
		}
	}
	if s.MissionPhase != 1 || s.MissionPhasesRemaining != 2 || s.Roster[0].PhaseCount != 0 {
		t.Fatalf("phase=%d remaining=%d phase count=%d", s.MissionPhase, s.MissionPhasesRemaining, s.Roster[0].PhaseCount)
	}
}

func TestPhaseNext_MissingMissionKeepsRanks(t *testing.T) {
	s, err := New(gapCampaign{Campaign: twoMissionCampaign(), mission: 2}, config.DefaultParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	m := s.Mission()
	s.GoalMet(GoalKillAllEnemy)
	before := positionOf(s)
	adv, err := s.PhaseNext()
	if !errors.Is(err, ErrNoMission) || adv != AdvanceMission {
		t.Fatalf("phase next = %s, %v; want mission with ErrNoMission", adv, err)
	}
	if got := positionOf(s); got != before {
		t.Fatalf("failed mission advance changed the session:\n got %+v\nwant %+v", got, before)
	}
	if s.Mission() != m || s.PhaseDef() == nil {
		t.Fatal("mission handles dropped by a failed advance")
	}
	if s.Journal.Any(Query{Category: CategoryRoster, Event: "promote"}) {
		t.Fatalf("promotion journaled for a failed advance:\n%s", s.Journal.Format())
	}
}

func TestSoldierDied_RecordsHero(t *testing.T) {
	s := newStartedSession(t)
	s.Roster[1].Rank = 6
	s.EnemyKilled(1)
	s.EnemyKilled(1)

	h, err := s.SoldierDied(1)
	if err != nil {
		t.Fatalf("soldier died: %v", err)
	}
	if h.RecruitID != 1 || h.Rank != 6 || h.Kills != 2 {
		t.Fatalf("hero = %+v", h)
	}
	if !s.Roster[1].Empty() {
		t.Fatal("dead troop still on roster")
	}
	if s.ScoreKillsAway != 1 || s.ScoreKillsHome != 2 || s.Phase.TroopsDied != 1 {
		t.Fatalf("away=%d home=%d died=%d", s.ScoreKillsAway, s.ScoreKillsHome, s.Phase.TroopsDied)
	}
	if _, err := s.SoldierDied(1); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("expected ErrEmptySlot on second death, got %v", err)
	}
}

func TestHeroes_DeathOrderAndCopy(t *testing.T) {
	s := newStartedSession(t)
	for _, slot := range []int{2, 0, 1} {
		if _, err := s.SoldierDied(slot); err != nil {
			t.Fatalf("died %d: %v", slot, err)
		}
	}
	heroes := s.Heroes()
	want := []int16{2, 0, 1}
	for i, id := range want {
		if heroes[i].RecruitID != id {
			t.Fatalf("heroes = %+v, want ids %v", heroes, want)
		}
	}
	heroes[0].Kills = 50
	if s.Heroes()[0].Kills == 50 {
		t.Fatal("Heroes returned live storage")
	}
}

func TestTick_RecordMode(t *testing.T) {
	p := config.Params{DemoRecord: true, DemoFile: "t.demo"}
	s, err := New(twoMissionCampaign(), p)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	click := demo.Click(demo.EventMouseLeftDown, 10, 10)
	s.Tick(nil)
	got := s.Tick([]demo.Event{click, click})
	if len(got) != 1 || got[0] != click {
		t.Fatalf("tick returned %v, want one deduplicated click", got)
	}
	if s.Recorded.Len() != 1 || len(s.Recorded.Events(1)) != 1 {
		t.Fatalf("log len=%d", s.Recorded.Len())
	}
	if s.Recorded.InputTicks != 2 || s.GameTicks != 2 {
		t.Fatalf("input ticks=%d game ticks=%d", s.Recorded.InputTicks, s.GameTicks)
	}
}

func TestTick_StopsAtCounterLimit(t *testing.T) {
	p := config.Params{DemoRecord: true, DemoFile: "t.demo"}
	s, err := New(twoMissionCampaign(), p)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.GameTicks = math.MaxUint32
	if got := s.Tick([]demo.Event{demo.Click(demo.EventMouseLeftDown, 1, 1)}); got != nil {
		t.Fatalf("tick past the limit returned %v", got)
	}
	if s.GameTicks != math.MaxUint32 || s.Recorded.Len() != 0 {
		t.Fatalf("game ticks=%d recorded=%d", s.GameTicks, s.Recorded.Len())
	}
}

func TestTick_PlaybackIgnoresObserved(t *testing.T) {
	rec := demo.NewRecorded(demo.DefaultSeed, config.DefaultParams())
	recorded := demo.Click(demo.EventMouseRightDown, 3, 4)
	rec.AddEvent(0, recorded)
	rec.InputTicks = 2

	s, err := NewPlayback(twoMissionCampaign(), rec)
	if err != nil {
		t.Fatalf("new playback: %v", err)
	}
	live := demo.Click(demo.EventMouseLeftDown, 99, 99)
	got := s.Tick([]demo.Event{live})
	if len(got) != 1 || got[0] != recorded {
		t.Fatalf("tick returned %v, want recorded event", got)
	}
	if s.PlaybackDone() {
		t.Fatal("playback done after 1 of 2 ticks")
	}
	s.Tick(nil)
	if !s.PlaybackDone() {
		t.Fatal("playback not done after 2 ticks")
	}
	if s.Seed() != demo.DefaultSeed {
		t.Fatalf("seed = %v, want recorded seed", s.Seed())
	}
}

func TestTick_LiveCopiesObserved(t *testing.T) {
	s, _ := New(twoMissionCampaign(), config.DefaultParams())
	in := []demo.Event{demo.Click(demo.EventMouseLeftDown, 1, 1)}
	out := s.Tick(in)
	out[0].MouseX = 50
	if in[0].MouseX != 1 {
		t.Fatal("live tick aliased the observed slice")
	}
	if s.Recorded.Len() != 0 {
		t.Fatal("live session recorded events")
	}
}

func TestSoldierSort(t *testing.T) {
	s := newStartedSession(t)
	s.Roster[2].Rank = 9
	order := s.SoldierSort()
	if order[0] != 2 {
		t.Fatalf("order = %v, want slot 2 first", order)
	}
}

func TestClear_KeepsSeed(t *testing.T) {
	s := newStartedSession(t)
	seed := s.Seed()
	s.Clear()
	if s.Seed() != seed {
		t.Fatalf("seed = %v, want %v", s.Seed(), seed)
	}
	if s.Roster.Deployable() != 0 || s.MissionNumber != 1 || s.RecruitsAvailable != 10 {
		t.Fatalf("clear left state: deployable=%d mission=%d pool=%d",
			s.Roster.Deployable(), s.MissionNumber, s.RecruitsAvailable)
	}
}
