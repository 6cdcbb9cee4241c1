package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
)

// overlayKind is a between-phase screen. While one is up no ticks run, so
// overlays never appear in the recorded timeline.
type overlayKind int

const (
	overlayTitle overlayKind = iota
	overlayRecruit
	overlayBriefing
	overlayService
)

type overlay struct {
	kind  overlayKind
	lines []string
}

// overlayQueue holds the screens waiting to be dismissed, honouring the
// skip options from the launch parameters.
type overlayQueue struct {
	params config.Params
	items  []overlay
}

func (q *overlayQueue) push(kind overlayKind, lines []string) {
	q.items = append(q.items, overlay{kind: kind, lines: lines})
}

// start queues the screens shown before the first tick.
func (q *overlayQueue) start(s *gamedata.Session) {
	if !q.params.SkipIntro {
		q.push(overlayTitle, []string{"SOLDIER CAMPAIGN", "", s.CampaignName, "", "click or press a key"})
	}
	q.missionStarted(s)
}

// missionStarted queues the recruit and briefing screens of a new mission.
func (q *overlayQueue) missionStarted(s *gamedata.Session) {
	if !q.params.SkipToMission {
		q.push(overlayRecruit, recruitLines(s))
	}
	q.phaseStarted(s)
}

// phaseStarted queues the briefing of a new phase.
func (q *overlayQueue) phaseStarted(s *gamedata.Session) {
	if !q.params.SkipBriefing {
		q.push(overlayBriefing, briefingLines(s))
	}
}

// missionEnded queues the debrief of the mission that just finished.
func (q *overlayQueue) missionEnded(s *gamedata.Session, mission int) {
	if !q.params.SkipService {
		q.push(overlayService, serviceLines(s, mission))
	}
}

func (q *overlayQueue) current() (overlay, bool) {
	if len(q.items) == 0 {
		return overlay{}, false
	}
	return q.items[0], true
}

func (q *overlayQueue) pop() {
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}

func recruitLines(s *gamedata.Session) []string {
	name := ""
	if m := s.Mission(); m != nil {
		name = m.Name()
	}
	lines := []string{
		fmt.Sprintf("MISSION %d: %s", s.MissionNumber, strings.ToUpper(name)),
		fmt.Sprintf("%d recruits left in the pool", s.RecruitsAvailable),
		"",
	}
	for _, t := range s.Roster.Sorted() {
		if t.Empty() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-4s rank %2d  kills %d", t.Label(), t.Rank, t.Kills))
	}
	return lines
}

func briefingLines(s *gamedata.Session) []string {
	name := ""
	if d := s.PhaseDef(); d != nil {
		name = d.Name()
	}
	var goals []string
	for _, g := range s.Phase.Outstanding() {
		goals = append(goals, g.String())
	}
	return []string{
		fmt.Sprintf("MISSION %d PHASE %d: %s", s.MissionNumber, s.MissionPhase, strings.ToUpper(name)),
		"",
		"Objectives: " + strings.Join(goals, ", "),
		fmt.Sprintf("Enemy aggression %d-%d", s.Phase.AggressionMin, s.Phase.AggressionMax),
		fmt.Sprintf("Troops deployed %d of %d", s.Phase.SoldiersAllocated, s.Phase.SoldiersAvailable),
	}
}

func serviceLines(s *gamedata.Session, mission int) []string {
	return []string{
		fmt.Sprintf("MISSION %d COMPLETE", mission),
		"",
		fmt.Sprintf("Home %d  Away %d", s.ScoreKillsHome, s.ScoreKillsAway),
		fmt.Sprintf("%d heroes remembered", len(s.Heroes())),
		fmt.Sprintf("%d veterans on the roster", veterans(s)),
	}
}

func veterans(s *gamedata.Session) int {
	n := 0
	for _, t := range s.Roster {
		if !t.Empty() && t.Rank > 0 {
			n++
		}
	}
	return n
}

func (g *Game) drawOverlay(screen *ebiten.Image, o overlay) {
	w := 0
	for _, l := range o.lines {
		if len(l) > w {
			w = len(l)
		}
	}
	boxW := float32(w*7 + 24)
	boxH := float32(len(o.lines)*lineHeight + 20)
	bx := (float32(ScreenWidth) - boxW) / 2
	by := (float32(ScreenHeight) - boxH) / 2
	vector.FillRect(screen, 0, 0, ScreenWidth, ScreenHeight, color.RGBA{A: 140}, false)
	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 235}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 200}, false)
	for i, l := range o.lines {
		g.text.print(screen, l, int(bx)+12, int(by)+10+i*lineHeight, colorText)
	}
}
