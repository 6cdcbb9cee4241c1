package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/soldier-campaign/internal/gamedata"
)

const panelTitleHeight = 16

// categoryColors tints the marker dot of each journal category.
var categoryColors = map[gamedata.Category]color.RGBA{
	gamedata.CategoryMission:  {R: 220, G: 200, B: 90, A: 255},
	gamedata.CategoryPhase:    {R: 90, G: 180, B: 220, A: 255},
	gamedata.CategoryRoster:   {R: 120, G: 210, B: 120, A: 255},
	gamedata.CategorySkirmish: {R: 210, G: 80, B: 70, A: 255},
	gamedata.CategoryDemo:     {R: 200, G: 110, B: 220, A: 255},
	gamedata.CategorySession:  {R: 180, G: 180, B: 180, A: 255},
}

// JournalPanel renders the newest journal entries, newest at the bottom.
type JournalPanel struct {
	X, Y, W, H int
	highlight  int // how many of the newest entries get a highlight row
}

// NewJournalPanel creates a panel occupying the given screen rectangle.
func NewJournalPanel(x, y, w, h int) *JournalPanel {
	return &JournalPanel{X: x, Y: y, W: w, H: h, highlight: 2}
}

// visible returns the entries that fit in the panel.
func (p *JournalPanel) visible(j *gamedata.Journal) []gamedata.JournalEntry {
	rows := (p.H - panelTitleHeight - 4) / lineHeight
	if rows <= 0 || j == nil {
		return nil
	}
	return j.Recent(rows)
}

// Draw renders the panel from j.
func (p *JournalPanel) Draw(screen *ebiten.Image, j *gamedata.Journal, t *textDrawer) {
	x, y := float32(p.X), float32(p.Y)
	w, h := float32(p.W), float32(p.H)
	vector.FillRect(screen, x, y, w, h, color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, x, y, x, y+h, 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	vector.FillRect(screen, x, y, w, panelTitleHeight, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	t.print(screen, "JOURNAL", p.X+8, p.Y+2, colorText)

	entries := p.visible(j)
	ry := p.Y + panelTitleHeight + 2
	for i, e := range entries {
		if i >= len(entries)-p.highlight {
			vector.FillRect(screen, x+2, float32(ry), w-4, lineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 140, G: 140, B: 140, A: 255}
		}
		vector.FillRect(screen, x+5, float32(ry+4), 3, 5, dot, false)
		line := fmt.Sprintf("%5d %-4s %s %s", e.Tick, e.Subject, e.Event, e.Detail)
		t.print(screen, line, p.X+12, ry, colorText)
		ry += lineHeight
	}
}
