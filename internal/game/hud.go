package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/soldier-campaign/internal/config"
	"github.com/Garsondee/soldier-campaign/internal/gamedata"
	"github.com/Garsondee/soldier-campaign/internal/skirmish"
)

// lineHeight is the basicfont 7x13 line pitch.
const lineHeight = 13

var colorText = color.RGBA{R: 220, G: 225, B: 215, A: 255}

// palette is the field colour set. Amiga sessions get warmer ground tones.
type palette struct {
	background color.RGBA
	ground     color.RGBA
	border     color.RGBA
	enemy      color.RGBA
	deadEnemy  color.RGBA
	objective  color.RGBA
	claimed    color.RGBA
	shooter    color.RGBA
}

func paletteFor(p config.Platform) palette {
	pal := palette{
		background: color.RGBA{R: 12, G: 14, B: 12, A: 255},
		ground:     color.RGBA{R: 34, G: 52, B: 30, A: 255},
		border:     color.RGBA{R: 65, G: 90, B: 65, A: 255},
		enemy:      color.RGBA{R: 210, G: 70, B: 70, A: 255},
		deadEnemy:  color.RGBA{R: 90, G: 60, B: 60, A: 255},
		objective:  color.RGBA{R: 230, G: 200, B: 60, A: 255},
		claimed:    color.RGBA{R: 90, G: 170, B: 90, A: 255},
		shooter:    color.RGBA{R: 120, G: 180, B: 255, A: 255},
	}
	if p == config.PlatformAmiga {
		pal.ground = color.RGBA{R: 60, G: 76, B: 34, A: 255}
		pal.border = color.RGBA{R: 110, G: 90, B: 50, A: 255}
	}
	return pal
}

// textDrawer draws HUD text with the basicfont face.
type textDrawer struct {
	face *text.GoXFace
}

func newTextDrawer() *textDrawer {
	return &textDrawer{face: text.NewGoXFace(basicfont.Face7x13)}
}

func (t *textDrawer) print(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	op.LineSpacing = lineHeight
	text.Draw(dst, s, t.face, op)
}

func (g *Game) drawField(screen *ebiten.Image) {
	fw, fh := float32(skirmish.FieldWidth), float32(skirmish.FieldHeight)
	vector.FillRect(screen, 0, 0, fw, fh, g.palette.ground, false)
	vector.StrokeRect(screen, 1, 1, fw-2, fh-2, 2.0, g.palette.border, false)

	for _, o := range g.sim.Objectives() {
		c := g.palette.objective
		if o.Done {
			c = g.palette.claimed
		}
		x, y := float32(o.X), float32(o.Y)
		vector.StrokeRect(screen, x-6, y-6, 12, 12, 2.0, c, false)
		g.text.print(screen, o.Goal.String(), int(o.X)+9, int(o.Y)-6, c)
	}
	for _, e := range g.sim.Enemies() {
		x, y := float32(e.X), float32(e.Y)
		if !e.Alive {
			vector.StrokeLine(screen, x-4, y-4, x+4, y+4, 1.5, g.palette.deadEnemy, false)
			vector.StrokeLine(screen, x-4, y+4, x+4, y-4, 1.5, g.palette.deadEnemy, false)
			continue
		}
		vector.FillCircle(screen, x, y, 5, g.palette.enemy, true)
		vector.StrokeCircle(screen, x, y, skirmish.HitRadius, 1.0, color.RGBA{R: 210, G: 70, B: 70, A: 60}, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	s := g.session
	top := skirmish.FieldHeight
	vector.FillRect(screen, 0, float32(top), float32(hudWidth), float32(ScreenHeight-top),
		color.RGBA{R: 6, G: 10, B: 6, A: 255}, false)

	mode := map[gamedata.Mode]string{
		gamedata.ModeLive:     "LIVE",
		gamedata.ModeRecord:   "REC",
		gamedata.ModePlayback: "PLAY",
	}[s.Mode()]
	if g.paused {
		mode += " (paused)"
	}
	if g.autopilot {
		mode += " auto"
	}
	lines := []string{
		fmt.Sprintf("%s  M%d.%d  T%d  %s", s.CampaignName, s.MissionNumber, s.MissionPhase, s.GameTicks, mode),
		fmt.Sprintf("Home %d  Away %d  Left %d  Heroes %d",
			s.ScoreKillsHome, s.ScoreKillsAway, g.sim.Remaining(), len(s.Heroes())),
	}
	shooter, hasShooter := g.sim.Shooter()
	for _, slot := range s.SoldierSort() {
		t := s.Roster[slot]
		if t.Empty() || len(lines) >= 8 {
			break
		}
		mark := " "
		if hasShooter && slot == shooter {
			mark = ">"
		}
		lines = append(lines, fmt.Sprintf("%s%-4s rank %2d  kills %3d  phases %d", mark, t.Label(), t.Rank, t.Kills, t.PhaseCount))
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}
	for i, l := range lines {
		c := colorText
		if i >= 2 && l[0] == '>' {
			c = g.palette.shooter
		}
		g.text.print(screen, l, 6, top+4+i*lineHeight, c)
	}
}
