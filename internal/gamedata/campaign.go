package gamedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultRecruitPool is the number of recruits a campaign starts with when
// its data does not say otherwise.
const DefaultRecruitPool = 360

// Campaign is the mission list a session plays through. Its lifetime belongs
// to the caller; a session only queries it.
type Campaign interface {
	Name() string
	MissionCount() int
	// Mission returns mission number n, counted from 1.
	Mission(n int) (Mission, bool)
	// Recruits is the size of the recruit pool.
	Recruits() int
}

// Mission is one mission of a campaign.
type Mission interface {
	Name() string
	PhaseCount() int
	// Phase returns phase number n, counted from 1.
	Phase(n int) (PhaseDef, bool)
	// Recruitment is how many new recruits join at mission start.
	Recruitment() int
}

// PhaseDef describes one phase of a mission.
type PhaseDef interface {
	Name() string
	// Aggression returns the enemy aggression bounds.
	Aggression() (min, max int16)
	Goals() []Goal
	// SoldiersRequired is the squad size the phase deploys; 0 means everyone.
	SoldiersRequired() int
}

// ErrInvalidCampaign indicates campaign data that cannot be played.
var ErrInvalidCampaign = errors.New("invalid campaign")

// CampaignData is a Campaign loaded from JSON.
type CampaignData struct {
	Title       string        `json:"name"`
	RecruitPool int           `json:"recruits"`
	Missions    []MissionData `json:"missions"`
}

// MissionData is a Mission loaded from JSON.
type MissionData struct {
	Title    string      `json:"name"`
	Recruits int         `json:"recruits"`
	Phases   []PhaseSpec `json:"phases"`
}

// PhaseSpec is a PhaseDef loaded from JSON.
type PhaseSpec struct {
	Title         string `json:"name"`
	AggressionMin int16  `json:"aggressionMin"`
	AggressionMax int16  `json:"aggressionMax"`
	Objectives    []Goal `json:"goals"`
	Required      int    `json:"soldiersRequired"`
}

// LoadCampaign decodes and validates campaign data.
func LoadCampaign(data []byte) (*CampaignData, error) {
	var c CampaignData
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCampaign, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.RecruitPool == 0 {
		c.RecruitPool = DefaultRecruitPool
	}
	return &c, nil
}

// LoadCampaignFile reads a campaign from path. An empty path selects the
// built-in campaign.
func LoadCampaignFile(path string) (*CampaignData, error) {
	if path == "" {
		return DefaultCampaign(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campaign: %w", err)
	}
	return LoadCampaign(data)
}

// Validate checks that every mission has phases and every phase sane bounds.
func (c *CampaignData) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCampaign)
	}
	if len(c.Missions) == 0 {
		return fmt.Errorf("%w: %q has no missions", ErrInvalidCampaign, c.Title)
	}
	for mi, m := range c.Missions {
		if len(m.Phases) == 0 {
			return fmt.Errorf("%w: mission %d has no phases", ErrInvalidCampaign, mi+1)
		}
		if m.Recruits < 0 {
			return fmt.Errorf("%w: mission %d recruits %d", ErrInvalidCampaign, mi+1, m.Recruits)
		}
		for pi, p := range m.Phases {
			if p.AggressionMin > p.AggressionMax {
				return fmt.Errorf("%w: mission %d phase %d aggression %d > %d",
					ErrInvalidCampaign, mi+1, pi+1, p.AggressionMin, p.AggressionMax)
			}
			if len(p.Objectives) > GoalCount {
				return fmt.Errorf("%w: mission %d phase %d has %d goals",
					ErrInvalidCampaign, mi+1, pi+1, len(p.Objectives))
			}
		}
	}
	return nil
}

func (c *CampaignData) Name() string { return c.Title }
func (c *CampaignData) MissionCount() int { return len(c.Missions) }
func (c *CampaignData) Recruits() int { return c.RecruitPool }

func (c *CampaignData) Mission(n int) (Mission, bool) {
	if n < 1 || n > len(c.Missions) {
		return nil, false
	}
	return &c.Missions[n-1], true
}

func (m *MissionData) Name() string { return m.Title }
func (m *MissionData) PhaseCount() int { return len(m.Phases) }
func (m *MissionData) Recruitment() int { return m.Recruits }

func (m *MissionData) Phase(n int) (PhaseDef, bool) {
	if n < 1 || n > len(m.Phases) {
		return nil, false
	}
	return &m.Phases[n-1], true
}

func (p *PhaseSpec) Name() string { return p.Title }
func (p *PhaseSpec) Aggression() (int16, int16) { return p.AggressionMin, p.AggressionMax }
func (p *PhaseSpec) Goals() []Goal { return p.Objectives }
func (p *PhaseSpec) SoldiersRequired() int { return p.Required }

// DefaultCampaign returns the built-in training campaign.
func DefaultCampaign() *CampaignData {
	return &CampaignData{
		Title:       "Boot Hill",
		RecruitPool: DefaultRecruitPool,
		Missions: []MissionData{
			{
				Title:    "The Sensible Initiation",
				Recruits: 4,
				Phases: []PhaseSpec{
					{Title: "It's a Jungle Out There", AggressionMin: 1, AggressionMax: 4, Objectives: []Goal{GoalKillAllEnemy}},
				},
			},
			{
				Title:    "Onwards and Upwards",
				Recruits: 4,
				Phases: []PhaseSpec{
					{Title: "Cliffhanger", AggressionMin: 2, AggressionMax: 6, Objectives: []Goal{GoalKillAllEnemy}},
					{Title: "Flames of Wrath", AggressionMin: 3, AggressionMax: 8, Objectives: []Goal{GoalKillAllEnemy, GoalDestroyEnemyBuildings}},
				},
			},
			{
				Title:    "Antarctic Adventure",
				Recruits: 6,
				Phases: []PhaseSpec{
					{Title: "Cold Feet", AggressionMin: 4, AggressionMax: 10, Objectives: []Goal{GoalKillAllEnemy}, Required: 6},
					{Title: "Snow Blind", AggressionMin: 5, AggressionMax: 12, Objectives: []Goal{GoalRescueHostages}},
					{Title: "Ice Station", AggressionMin: 6, AggressionMax: 14, Objectives: []Goal{GoalKillAllEnemy, GoalDestroyFactory}},
				},
			},
		},
	}
}
