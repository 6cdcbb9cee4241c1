package gamedata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Garsondee/soldier-campaign/internal/demo"
)

var (
	// ErrMalformed indicates save data that could not be decoded.
	ErrMalformed = errors.New("malformed save")
	// ErrVersionMismatch indicates a save written by an incompatible release.
	ErrVersionMismatch = errors.New("incompatible save version")
	// ErrCampaignMismatch indicates a save for a different campaign than the
	// one attached to the session.
	ErrCampaignMismatch = errors.New("save belongs to another campaign")
)

// Release identifies the build that wrote a save.
type Release struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// CurrentRelease is the save format this build writes.
var CurrentRelease = Release{Major: 1, Minor: 3, Patch: 0}

func (r Release) String() string {
	return fmt.Sprintf("%d.%d.%d", r.Major, r.Minor, r.Patch)
}

// Less orders releases.
func (r Release) Less(o Release) bool {
	if r.Major != o.Major {
		return r.Major < o.Major
	}
	if r.Minor != o.Minor {
		return r.Minor < o.Minor
	}
	return r.Patch < o.Patch
}

// CompatibleWith reports whether a save written by r can be loaded by cur:
// same major release, and not newer than cur.
func (r Release) CompatibleWith(cur Release) bool {
	return r.Major == cur.Major && !cur.Less(r)
}

// sessionJSON is the save layout. Version and Recorded are pointers so a
// missing section is told apart from a zero one.
type sessionJSON struct {
	Version      *Release `json:"version"`
	SavedName    string   `json:"savedName"`
	CampaignName string   `json:"campaignName"`
	Mode         Mode     `json:"mode"`

	MissionNumber          int `json:"missionNumber"`
	MissionPhase           int `json:"missionPhase"`
	MissionPhasesRemaining int `json:"missionPhasesRemaining"`
	MissionRecruitment     int `json:"missionRecruitment"`

	RecruitsAvailable  int   `json:"recruitsAvailable"`
	RecruitsAliveCount int   `json:"recruitsAliveCount"`
	RecruitNextID      int16 `json:"recruitNextId"`

	Roster []Troop `json:"roster"`
	Heroes []Hero  `json:"heroes"`

	ScoreKillsAway int    `json:"scoreKillsAway"`
	ScoreKillsHome int    `json:"scoreKillsHome"`
	GameTicks      uint32 `json:"gameTicks"`

	Phase    PhaseData      `json:"phase"`
	Recorded *demo.Recorded `json:"recorded"`
}

// ToJSON snapshots the session under name. The result shares nothing with
// the live session and is safe to hand to another goroutine.
func (s *Session) ToJSON(name string) ([]byte, error) {
	version := CurrentRelease
	heroes := s.Heroes()
	snap := sessionJSON{
		Version:                &version,
		SavedName:              name,
		CampaignName:           s.CampaignName,
		Mode:                   s.mode,
		MissionNumber:          s.MissionNumber,
		MissionPhase:           s.MissionPhase,
		MissionPhasesRemaining: s.MissionPhasesRemaining,
		MissionRecruitment:     s.MissionRecruitment,
		RecruitsAvailable:      s.RecruitsAvailable,
		RecruitsAliveCount:     s.RecruitsAliveCount,
		RecruitNextID:          s.RecruitNextID,
		Roster:                 s.Roster[:],
		Heroes:                 heroes,
		ScoreKillsAway:         s.ScoreKillsAway,
		ScoreKillsHome:         s.ScoreKillsHome,
		GameTicks:              s.GameTicks,
		Phase:                  s.Phase,
		Recorded:               s.Recorded,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

// FromJSON replaces the session with a snapshot written by ToJSON. On any
// error the session is left exactly as it was.
func (s *Session) FromJSON(data []byte) error {
	var snap sessionJSON
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch {
	case snap.Version == nil:
		return fmt.Errorf("%w: missing version", ErrMalformed)
	case len(snap.Roster) != RosterSize:
		return fmt.Errorf("%w: roster has %d slots, want %d", ErrMalformed, len(snap.Roster), RosterSize)
	case snap.Recorded == nil:
		return fmt.Errorf("%w: missing event log", ErrMalformed)
	}
	if !snap.Version.CompatibleWith(CurrentRelease) {
		return fmt.Errorf("%w: saved %s, running %s", ErrVersionMismatch, snap.Version, CurrentRelease)
	}
	if s.campaign != nil && snap.CampaignName != s.campaign.Name() {
		return fmt.Errorf("%w: %q", ErrCampaignMismatch, snap.CampaignName)
	}
	if snap.Mode < ModeLive || snap.Mode > ModePlayback {
		return fmt.Errorf("%w: mode %d", ErrMalformed, snap.Mode)
	}

	loaded := Session{
		Phase:                  snap.Phase,
		campaign:               s.campaign,
		CampaignName:           snap.CampaignName,
		Recorded:               snap.Recorded,
		GameTicks:              snap.GameTicks,
		MissionNumber:          snap.MissionNumber,
		MissionPhase:           snap.MissionPhase,
		MissionPhasesRemaining: snap.MissionPhasesRemaining,
		MissionRecruitment:     snap.MissionRecruitment,
		RecruitsAvailable:      snap.RecruitsAvailable,
		RecruitsAliveCount:     snap.RecruitsAliveCount,
		RecruitNextID:          snap.RecruitNextID,
		heroes:                 snap.Heroes,
		ScoreKillsAway:         snap.ScoreKillsAway,
		ScoreKillsHome:         snap.ScoreKillsHome,
		SavedName:              snap.SavedName,
		SavedVersion:           *snap.Version,
		mode:                   snap.Mode,
		Journal:                s.Journal,
	}
	copy(loaded.Roster[:], snap.Roster)
	if loaded.Journal == nil {
		loaded.Journal = NewJournal(false)
	}
	if err := loaded.resolveHandles(); err != nil {
		return err
	}
	*s = loaded
	s.note(CategorySession, "loaded", NoSubject,
		fmt.Sprintf("%q version %s", s.SavedName, s.SavedVersion), 0)
	return nil
}

// resolveHandles re-attaches the mission and phase the snapshot points at.
func (s *Session) resolveHandles() error {
	if s.campaign == nil || s.MissionNumber > s.campaign.MissionCount() {
		return nil
	}
	m, ok := s.campaign.Mission(s.MissionNumber)
	if !ok {
		return fmt.Errorf("%w: mission %d not in campaign", ErrMalformed, s.MissionNumber)
	}
	s.mission = m
	if !s.Phase.Started {
		return nil
	}
	def, ok := m.Phase(s.MissionPhase)
	if !ok {
		return fmt.Errorf("%w: mission %d phase %d not in campaign", ErrMalformed, s.MissionNumber, s.MissionPhase)
	}
	s.phaseDef = def
	return nil
}
