package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/demo"
	"github.com/Garsondee/soldier-campaign/internal/game"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
	"github.com/Garsondee/soldier-campaign/internal/storage/sqlite"
)

func main() {
	params := config.DefaultParams()
	if err := params.ApplyEnv(); err != nil {
		log.Fatal(err)
	}
	params.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := params.Validate(); err != nil {
		log.Fatal(err)
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		log.Fatal(err)
	}
	campaign, err := gamedata.LoadCampaignFile(rt.CampaignFile)
	if err != nil {
		log.Fatal(err)
	}
	if params.CampaignName != "" && params.CampaignName != campaign.Name() {
		log.Fatalf("campaign %q requested, %q loaded", params.CampaignName, campaign.Name())
	}

	store, err := sqlite.Open(rt.SaveDB)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	sess, err := newSession(campaign, params)
	if err != nil {
		log.Fatal(err)
	}
	sess.Journal = gamedata.NewJournal(rt.VerboseJournal)
	if rt.VerboseJournal {
		sess.Journal.SetOutput(log.Default())
	}

	g, err := game.New(game.Config{
		Session: sess,
		Params:  params,
		Saves:   store,
		Demos:   store,
	})
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle(fmt.Sprintf("Soldier Campaign - %s", campaign.Name()))
	ebiten.SetWindowSize(game.ScreenWidth*2, game.ScreenHeight*2)
	ebiten.SetTPS(rt.TicksPerSecond)
	ebiten.SetFullscreen(!params.WindowMode)
	ebiten.SetWindowClosingHandled(true)

	runErr := ebiten.RunGame(g)
	if err := g.Close(); err != nil {
		log.Print(err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}

// newSession starts a fresh session, or a playback session from the demo
// file when playback was requested.
func newSession(c gamedata.Campaign, p config.Params) (*gamedata.Session, error) {
	if !p.DemoPlayback {
		return gamedata.New(c, p)
	}
	f, err := os.Open(p.DemoFile)
	if err != nil {
		return nil, fmt.Errorf("open demo: %w", err)
	}
	defer f.Close()
	rec, err := demo.Load(f)
	if err != nil {
		return nil, err
	}
	return gamedata.NewPlayback(c, rec)
}
