package skirmish

import (
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NewPrinter returns the printer reports use when the caller has no locale
// preference.
func NewPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// WriteReport writes d as a plain-text debrief.
func WriteReport(w io.Writer, d Debrief, p *message.Printer) error {
	if p == nil {
		p = NewPrinter()
	}
	lines := []string{
		p.Sprintf("=== Debrief: %s ===", d.Campaign),
		p.Sprintf("outcome=%s  %s", d.Outcome, d.Description),
		p.Sprintf("position: mission %d phase %d after %d ticks", d.MissionNumber, d.MissionPhase, d.Ticks),
		p.Sprintf("kills: home %d  away %d  dropped input %d", d.KillsHome, d.KillsAway, d.Dropped),
		"",
		p.Sprintf("Roster (%d):", len(d.Roster)),
	}
	for _, t := range d.Roster {
		lines = append(lines, p.Sprintf("  %-4s rank %2d  kills %d", t.Label(), t.Rank, t.Kills))
	}
	if len(d.Heroes) > 0 {
		lines = append(lines, "", p.Sprintf("Heroes (%d):", len(d.Heroes)))
		for _, h := range d.Heroes {
			lines = append(lines, p.Sprintf("  R%-3d rank %2d  kills %d", h.RecruitID, h.Rank, h.Kills))
		}
	}
	if grades := GradeRoster(d); len(grades) > 0 {
		avg := AverageScore(grades)
		lines = append(lines, "", p.Sprintf("Grades (avg %.1f, %s):", avg, LetterGrade(avg)))
		for _, g := range grades {
			status := "survived"
			if !g.Survived {
				status = "KIA"
			}
			lines = append(lines, p.Sprintf("  %-3s %-4s [%s] score %.0f", g.Grade, g.Label, status, g.Score))
		}
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// ReportText renders d with the default printer.
func ReportText(d Debrief) string {
	var sb strings.Builder
	_ = WriteReport(&sb, d, nil)
	return sb.String()
}
