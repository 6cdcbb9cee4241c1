package skirmish

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/demo"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
)

const maxRunTicks = 100000

func mustHarness(t *testing.T, opts ...Option) *Harness {
	t.Helper()
	h, err := NewHarness(opts...)
	if err != nil {
		t.Fatalf("new harness: %v", err)
	}
	return h
}

func runToEnd(t *testing.T, h *Harness) {
	t.Helper()
	if _, err := h.RunUntil(Ended, maxRunTicks); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !Ended(h) {
		t.Fatalf("skirmish still running after %d ticks\n%s", h.Ticks, h.Session.Journal.Format())
	}
}

// oneManArmy is a single recruit against heavy aggression.
func oneManArmy() *gamedata.CampaignData {
	return &gamedata.CampaignData{
		Title:       "Last Stand",
		RecruitPool: 1,
		Missions: []gamedata.MissionData{
			{Title: "Hold", Recruits: 1, Phases: []gamedata.PhaseSpec{
				{Title: "Hold", AggressionMin: 10, AggressionMax: 20, Objectives: []gamedata.Goal{gamedata.GoalKillAllEnemy}},
			}},
		},
	}
}

func TestNew_StartsFirstPhase(t *testing.T) {
	h := mustHarness(t)
	if h.Session.PhaseState() != gamedata.PhaseInProgress {
		t.Fatalf("phase state = %s", h.Session.PhaseState())
	}
	if h.Sim.Remaining() != 4 {
		t.Fatalf("quota = %d, want 4 for aggression max 4", h.Sim.Remaining())
	}
	if len(h.Sim.Objectives()) != 0 {
		t.Fatalf("objectives = %+v, want none for a kill-only phase", h.Sim.Objectives())
	}
}

func TestHandleInput_ClickOnNothing(t *testing.T) {
	h := mustHarness(t)
	err := h.Sim.HandleInput(0, demo.Click(demo.EventMouseLeftDown, 0, 0))
	if !errors.Is(err, demo.ErrDesync) {
		t.Fatalf("expected ErrDesync, got %v", err)
	}
	if h.Sim.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", h.Sim.Dropped())
	}
}

func TestHandleInput_DeadTarget(t *testing.T) {
	h := mustHarness(t)
	if _, err := h.Sim.Advance(0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	enemies := h.Sim.Enemies()
	if len(enemies) != 1 {
		t.Fatalf("enemies after first tick = %d, want 1", len(enemies))
	}
	e := enemies[0]
	click := demo.Click(demo.EventMouseLeftDown, e.X, e.Y)
	for i := 0; i < 200 && h.Sim.Enemies()[0].Alive; i++ {
		if err := h.Sim.HandleInput(0, click); err != nil {
			t.Fatalf("shot %d: %v", i, err)
		}
	}
	if h.Sim.Enemies()[0].Alive {
		t.Fatal("enemy survived 200 shots")
	}
	if h.Session.ScoreKillsHome != 1 {
		t.Fatalf("home kills = %d, want 1", h.Session.ScoreKillsHome)
	}
	if err := h.Sim.HandleInput(0, click); !errors.Is(err, demo.ErrDesync) {
		t.Fatalf("click on dead enemy: expected ErrDesync, got %v", err)
	}
}

func TestHandleInput_KeysIgnored(t *testing.T) {
	h := mustHarness(t)
	if err := h.Sim.HandleInput(0, demo.Key(demo.EventKeyDown, 32, 0, 0)); err != nil {
		t.Fatalf("key event: %v", err)
	}
	if h.Sim.Dropped() != 0 {
		t.Fatalf("dropped = %d", h.Sim.Dropped())
	}
}

func TestRightClick_CyclesShooter(t *testing.T) {
	h := mustHarness(t)
	first, ok := h.Sim.Shooter()
	if !ok {
		t.Fatal("no shooter")
	}
	if err := h.Sim.HandleInput(0, demo.Click(demo.EventMouseRightDown, 5, 5)); err != nil {
		t.Fatalf("right click: %v", err)
	}
	second, _ := h.Sim.Shooter()
	if second == first {
		t.Fatalf("shooter still slot %d after right click", first)
	}
	if !h.Session.Roster[second].Selected {
		t.Fatal("new shooter not marked selected")
	}
}

func TestKillQuota_AdvancesMission(t *testing.T) {
	h := mustHarness(t, WithAutopilot(1))
	if _, err := h.RunUntil(func(h *Harness) bool { return h.Session.MissionNumber == 2 }, maxRunTicks); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.Session.MissionNumber != 2 {
		t.Fatalf("still on mission %d after %d ticks", h.Session.MissionNumber, h.Ticks)
	}
	if !h.Session.Journal.Any(gamedata.Query{Category: gamedata.CategoryPhase, Event: "goal_met", Contains: "kill_all_enemy"}) {
		t.Fatalf("kill goal never met:\n%s", h.Session.Journal.Format())
	}
	if h.Session.ScoreKillsHome < 4 {
		t.Fatalf("home kills = %d, want at least 4", h.Session.ScoreKillsHome)
	}
	if h.Session.Journal.Count(gamedata.CategorySkirmish, "kill") != h.Session.ScoreKillsHome {
		t.Fatal("journal kills disagree with score")
	}
}

func TestAutopilot_WinsCampaign(t *testing.T) {
	h := mustHarness(t, WithAutopilot(1))
	runToEnd(t, h)
	d := h.Sim.Debrief()
	if d.Outcome != OutcomeCampaignWon {
		t.Fatalf("outcome = %s: %s", d.Outcome, d.Description)
	}
	if d.MissionNumber != 4 {
		t.Fatalf("mission = %d, want one past the last", d.MissionNumber)
	}
	if d.Survivors == 0 || len(d.Roster) != d.Survivors {
		t.Fatalf("survivors=%d roster=%d", d.Survivors, len(d.Roster))
	}
	if h.Session.Journal.Count(gamedata.CategoryMission, "campaign_complete") != 1 {
		t.Fatalf("campaign completion not journaled:\n%s", h.Session.Journal.Format())
	}
}

func TestNoInput_SquadLost(t *testing.T) {
	h := mustHarness(t, WithCampaign(oneManArmy()))
	runToEnd(t, h)
	d := h.Sim.Debrief()
	if d.Outcome != OutcomeSquadLost {
		t.Fatalf("outcome = %s", d.Outcome)
	}
	if d.KillsAway != 1 || len(d.Heroes) != 1 || d.Survivors != 0 {
		t.Fatalf("away=%d heroes=%d survivors=%d", d.KillsAway, len(d.Heroes), d.Survivors)
	}
	if more, _ := h.Sim.Advance(h.Session.GameTicks); more {
		t.Fatal("Advance reported more after the squad was lost")
	}
}

func TestSameSeed_SameRun(t *testing.T) {
	a := mustHarness(t, WithAutopilot(3))
	b := mustHarness(t, WithAutopilot(3))
	if err := a.RunTicks(4000); err != nil {
		t.Fatalf("run a: %v", err)
	}
	if err := b.RunTicks(4000); err != nil {
		t.Fatalf("run b: %v", err)
	}
	if !reflect.DeepEqual(a.Sim.Debrief(), b.Sim.Debrief()) {
		t.Fatalf("same seed diverged:\n a=%+v\n b=%+v", a.Sim.Debrief(), b.Sim.Debrief())
	}
}

func recordRun(t *testing.T) (*Harness, *demo.Recorded) {
	t.Helper()
	h := mustHarness(t, WithRecording("replay.demo"), WithAutopilot(2), WithStrayClicks(97),
		WithInput(5, demo.Click(demo.EventMouseRightDown, 3, 3)))
	runToEnd(t, h)
	if h.Sim.Dropped() == 0 {
		t.Fatal("recording has no dropped clicks to replay")
	}
	return h, h.Session.Recorded.Clone()
}

func TestReplay_HarnessMatchesRecording(t *testing.T) {
	live, rec := recordRun(t)
	replay := mustHarness(t, WithPlayback(rec))
	runToEnd(t, replay)

	want, got := live.Sim.Debrief(), replay.Sim.Debrief()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("replay diverged:\nwant %+v\n got %+v", want, got)
	}
	if replay.Session.Journal.Count(gamedata.CategoryDemo, "desync_drop") != live.Sim.Dropped() {
		t.Fatalf("desync drops = %d, want %d",
			replay.Session.Journal.Count(gamedata.CategoryDemo, "desync_drop"), live.Sim.Dropped())
	}
}

func TestReplay_PlaybackFromJSON(t *testing.T) {
	live, rec := recordRun(t)
	data, err := rec.ToJSON()
	if err != nil {
		t.Fatalf("encode demo: %v", err)
	}
	loaded := demo.NewRecorded(demo.Seed{}, config.DefaultParams())
	if err := loaded.FromJSON(data); err != nil {
		t.Fatalf("decode demo: %v", err)
	}

	sess, err := gamedata.NewPlayback(gamedata.DefaultCampaign(), loaded)
	if err != nil {
		t.Fatalf("new playback: %v", err)
	}
	sim, err := New(sess)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	res, err := sess.Recorded.Playback(context.Background(), sim)
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if !res.Ended || res.Dropped != live.Sim.Dropped() {
		t.Fatalf("result = %+v, want ended with %d dropped", res, live.Sim.Dropped())
	}
	if !reflect.DeepEqual(live.Sim.Debrief(), sim.Debrief()) {
		t.Fatalf("replay diverged:\nwant %+v\n got %+v", live.Sim.Debrief(), sim.Debrief())
	}
}

func TestReplay_Cancelled(t *testing.T) {
	_, rec := recordRun(t)
	sess, err := gamedata.NewPlayback(gamedata.DefaultCampaign(), rec)
	if err != nil {
		t.Fatalf("new playback: %v", err)
	}
	sim, err := New(sess)
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := rec.Playback(ctx, sim)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Ticks != 0 || sim.Outcome() != OutcomeInProgress {
		t.Fatalf("cancelled playback ran: %+v", res)
	}
}
