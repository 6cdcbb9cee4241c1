package game

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/demo"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
	"github.com/Garsondee/soldier-campaign/internal/skirmish"
	"github.com/Garsondee/soldier-campaign/internal/storage"
)

// Screen layout: the field on top, HUD and journal side by side below it.
const (
	ScreenWidth  = skirmish.FieldWidth
	ScreenHeight = 480
	hudWidth     = 340
)

const (
	// playbackOverlayTicks is how long an overlay stays up during playback,
	// where nobody is there to dismiss it.
	playbackOverlayTicks = 120
	statusTicks          = 180
	storeTimeout         = 5 * time.Second
)

// Config wires the host to a session and its storage.
type Config struct {
	Session *gamedata.Session
	Params  config.Params
	Saves   storage.SaveStore // optional
	Demos   storage.DemoStore // optional
}

// Game is the ebiten host. Each Update captures device input, runs one
// session tick and feeds the resulting events to the skirmish.
type Game struct {
	session *gamedata.Session
	sim     *skirmish.Sim
	params  config.Params
	saves   storage.SaveStore
	demos   storage.DemoStore

	text    *textDrawer
	palette palette
	panel   *JournalPanel

	overlays     overlayQueue
	overlayTicks int
	paused       bool
	autopilot    bool
	done         bool
	status       string
	statusLeft   int

	lastMission int
	lastPhase   int

	pending sync.WaitGroup
}

// New attaches a host to cfg.Session, starting its first phase if needed.
func New(cfg Config) (*Game, error) {
	if cfg.Session == nil {
		return nil, errors.New("game: nil session")
	}
	sim, err := skirmish.New(cfg.Session)
	if err != nil {
		return nil, err
	}
	g := &Game{
		session:     cfg.Session,
		sim:         sim,
		params:      cfg.Params,
		saves:       cfg.Saves,
		demos:       cfg.Demos,
		text:        newTextDrawer(),
		palette:     paletteFor(cfg.Params.Platform),
		panel:       NewJournalPanel(hudWidth, skirmish.FieldHeight, ScreenWidth-hudWidth, ScreenHeight-skirmish.FieldHeight),
		overlays:    overlayQueue{params: cfg.Params},
		lastMission: cfg.Session.MissionNumber,
		lastPhase:   cfg.Session.MissionPhase,
	}
	g.overlays.start(cfg.Session)
	return g, nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.statusLeft > 0 {
		if g.statusLeft--; g.statusLeft == 0 {
			g.status = ""
		}
	}
	g.handleHostKeys()

	in := captureInput()
	if _, ok := g.overlays.current(); ok {
		g.updateOverlay(in)
		return nil
	}
	if g.paused || g.done {
		return nil
	}

	live := g.session.Mode() != gamedata.ModePlayback
	if !live && g.session.PlaybackDone() {
		g.finish()
		return nil
	}
	var observed []demo.Event
	if live {
		observed = in.events()
		if g.autopilot {
			if ev, ok := g.sim.Autopilot(); ok {
				observed = append(observed, ev)
			}
		}
	}
	more, err := g.sim.Step(observed)
	if err != nil {
		return err
	}
	g.watchProgress()
	if !more {
		g.finish()
	}
	return nil
}

func (g *Game) updateOverlay(in inputState) {
	if g.session.Mode() == gamedata.ModePlayback {
		if g.overlayTicks++; g.overlayTicks < playbackOverlayTicks {
			return
		}
	} else if !in.any() {
		return
	}
	g.overlayTicks = 0
	g.overlays.pop()
}

func (g *Game) handleHostKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		if g.session.Mode() != gamedata.ModePlayback {
			g.autopilot = !g.autopilot
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copySave()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.copyDebrief()
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.quickSave()
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		g.quickLoad()
	}
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusLeft = statusTicks
}

// watchProgress queues overlays and autosaves when the session moves on.
func (g *Game) watchProgress() {
	s := g.session
	switch {
	case s.MissionNumber != g.lastMission:
		g.overlays.missionEnded(s, g.lastMission)
		if g.sim.Outcome() == skirmish.OutcomeInProgress {
			g.overlays.missionStarted(s)
		}
		g.autosave()
	case s.MissionPhase != g.lastPhase:
		g.overlays.phaseStarted(s)
	}
	g.lastMission, g.lastPhase = s.MissionNumber, s.MissionPhase
}

func (g *Game) finish() {
	if g.done {
		return
	}
	g.done = true
	d := g.sim.Debrief()
	log.Printf("run over: %s (%s)", d.Outcome, d.Description)
}

// autosave writes a snapshot in the background. The snapshot is taken here,
// so the live session is never shared with the writer.
func (g *Game) autosave() {
	if g.saves == nil {
		return
	}
	rec, err := saveRecord(g.session, autosaveName, time.Now())
	if err != nil {
		log.Printf("autosave: %v", err)
		return
	}
	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := g.saves.PutSave(ctx, rec); err != nil {
			log.Printf("autosave: %v", err)
		}
	}()
}

func (g *Game) quickSave() {
	if g.saves == nil {
		g.setStatus("no save store")
		return
	}
	rec, err := saveRecord(g.session, quicksaveName, time.Now())
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		err = g.saves.PutSave(ctx, rec)
		cancel()
	}
	if err != nil {
		g.setStatus("save failed: %v", err)
		return
	}
	g.setStatus("saved %q", quicksaveName)
}

// quickLoad restores the quick save slot. Only live sessions may load; a
// recording or playback must stay one unbroken timeline.
func (g *Game) quickLoad() {
	if g.saves == nil || g.session.Mode() != gamedata.ModeLive {
		g.setStatus("load unavailable")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	rec, err := g.saves.GetSave(ctx, quicksaveName)
	cancel()
	if err == nil {
		err = g.session.FromJSON(rec.Data)
	}
	if err != nil {
		g.setStatus("load failed: %v", err)
		return
	}
	sim, err := skirmish.New(g.session)
	if err != nil {
		g.setStatus("load failed: %v", err)
		return
	}
	g.sim = sim
	g.done = false
	g.lastMission, g.lastPhase = g.session.MissionNumber, g.session.MissionPhase
	g.setStatus("loaded %q", quicksaveName)
}

func (g *Game) copySave() {
	data, err := g.session.ToJSON("clipboard")
	if err == nil {
		err = setClipboardText(string(data))
	}
	if err != nil {
		g.setStatus("copy failed: %v", err)
		return
	}
	g.setStatus("save copied to clipboard")
}

func (g *Game) copyDebrief() {
	if err := setClipboardText(skirmish.ReportText(g.sim.Debrief())); err != nil {
		g.setStatus("copy failed: %v", err)
		return
	}
	g.setStatus("debrief copied to clipboard")
}

// Close waits for background saves and, when recording, writes the demo to
// the demo file and the demo store.
func (g *Game) Close() error {
	g.pending.Wait()
	if g.session.Mode() != gamedata.ModeRecord {
		return nil
	}
	f, err := os.Create(g.params.DemoFile)
	if err != nil {
		return fmt.Errorf("create demo file: %w", err)
	}
	if err := g.session.Recorded.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close demo file: %w", err)
	}
	log.Printf("demo written to %s (%d events over %d ticks)",
		g.params.DemoFile, g.session.Recorded.Len(), g.session.Recorded.Length())

	if g.demos == nil {
		return nil
	}
	rec, err := demoRecord(g.session, g.params.DemoFile, time.Now())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := g.demos.PutDemo(ctx, rec); err != nil {
		return fmt.Errorf("store demo %q: %w", rec.Name, err)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.palette.background)
	g.drawField(screen)
	g.drawHUD(screen)
	g.panel.Draw(screen, g.session.Journal, g.text)

	if o, ok := g.overlays.current(); ok {
		g.drawOverlay(screen, o)
		return
	}
	if g.done {
		d := g.sim.Debrief()
		g.drawOverlay(screen, overlay{lines: []string{
			d.Description,
			"",
			fmt.Sprintf("Home %d  Away %d  Heroes %d", d.KillsHome, d.KillsAway, len(d.Heroes)),
			"D copies the debrief, Esc quits",
		}})
		return
	}
	if g.paused {
		g.text.print(screen, "PAUSED", ScreenWidth/2-21, 8, color.White)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return ScreenWidth, ScreenHeight
}
