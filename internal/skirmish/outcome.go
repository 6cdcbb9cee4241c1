package skirmish

import (
	"fmt"

	"github.com/Garsondee/soldier-campaign/internal/gamedata"
)

// Outcome is where a skirmish run stands.
type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeCampaignWon
	OutcomeSquadLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in_progress"
	case OutcomeCampaignWon:
		return "campaign_won"
	case OutcomeSquadLost:
		return "squad_lost"
	default:
		return "unknown"
	}
}

// Debrief is the end-of-run summary shown by the host and the demo report.
type Debrief struct {
	Outcome       Outcome
	Campaign      string
	MissionNumber int
	MissionPhase  int
	Ticks         uint32
	KillsHome     int
	KillsAway     int
	Survivors     int
	Roster        []gamedata.Troop // occupied slots in display order
	Heroes        []gamedata.Hero
	Dropped       int
	Description   string
}

// Summarize builds the debrief for sess after a run that ended with outcome.
func Summarize(sess *gamedata.Session, outcome Outcome, dropped int) Debrief {
	d := Debrief{
		Outcome:       outcome,
		Campaign:      sess.CampaignName,
		MissionNumber: sess.MissionNumber,
		MissionPhase:  sess.MissionPhase,
		Ticks:         sess.GameTicks,
		KillsHome:     sess.ScoreKillsHome,
		KillsAway:     sess.ScoreKillsAway,
		Survivors:     sess.Roster.Deployable(),
		Heroes:        sess.Heroes(),
		Dropped:       dropped,
	}
	for _, t := range sess.Roster.Sorted() {
		if !t.Empty() {
			d.Roster = append(d.Roster, t)
		}
	}

	switch outcome {
	case OutcomeCampaignWon:
		d.Description = fmt.Sprintf("%s complete: %d survivors, %d heroes", d.Campaign, d.Survivors, len(d.Heroes))
	case OutcomeSquadLost:
		d.Description = fmt.Sprintf("squad lost on mission %d phase %d", d.MissionNumber, d.MissionPhase)
	default:
		d.Description = fmt.Sprintf("stopped on mission %d phase %d", d.MissionNumber, d.MissionPhase)
	}
	return d
}
