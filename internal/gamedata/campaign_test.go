package gamedata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCampaign(t *testing.T) {
	data := []byte(`{
		"name": "Short",
		"missions": [
			{"name": "One", "recruits": 2, "phases": [
				{"name": "Only", "aggressionMin": 1, "aggressionMax": 2, "goals": ["kill_all_enemy"]}
			]}
		]
	}`)
	c, err := LoadCampaign(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Name() != "Short" || c.MissionCount() != 1 {
		t.Fatalf("campaign = %q with %d missions", c.Name(), c.MissionCount())
	}
	if c.Recruits() != DefaultRecruitPool {
		t.Fatalf("recruit pool = %d, want default %d", c.Recruits(), DefaultRecruitPool)
	}
	m, ok := c.Mission(1)
	if !ok || m.Recruitment() != 2 {
		t.Fatalf("mission 1 = %v, %v", m, ok)
	}
	p, ok := m.Phase(1)
	if !ok {
		t.Fatal("phase 1 missing")
	}
	if lo, hi := p.Aggression(); lo != 1 || hi != 2 {
		t.Fatalf("aggression = %d..%d", lo, hi)
	}
	if g := p.Goals(); len(g) != 1 || g[0] != GoalKillAllEnemy {
		t.Fatalf("goals = %v", g)
	}
	if _, ok := c.Mission(2); ok {
		t.Fatal("mission 2 should not exist")
	}
	if _, ok := m.Phase(0); ok {
		t.Fatal("phase 0 should not exist")
	}
}

func TestLoadCampaign_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":       `{"name":`,
		"no name":      `{"missions":[{"phases":[{}]}]}`,
		"no missions":  `{"name":"x"}`,
		"no phases":    `{"name":"x","missions":[{"name":"m"}]}`,
		"bad bounds":   `{"name":"x","missions":[{"phases":[{"aggressionMin":5,"aggressionMax":1}]}]}`,
		"unknown goal": `{"name":"x","missions":[{"phases":[{"goals":["win"]}]}]}`,
	}
	for name, data := range cases {
		if _, err := LoadCampaign([]byte(data)); !errors.Is(err, ErrInvalidCampaign) {
			t.Fatalf("%s: expected ErrInvalidCampaign, got %v", name, err)
		}
	}
}

func TestDefaultCampaign_Valid(t *testing.T) {
	c := DefaultCampaign()
	if err := c.Validate(); err != nil {
		t.Fatalf("default campaign invalid: %v", err)
	}
	if c.MissionCount() != 3 {
		t.Fatalf("missions = %d, want 3", c.MissionCount())
	}
}

func TestLoadCampaignFile(t *testing.T) {
	c, err := LoadCampaignFile("")
	if err != nil || c.Name() != DefaultCampaign().Name() {
		t.Fatalf("empty path = %v, %v, want built-in campaign", c, err)
	}

	path := filepath.Join(t.TempDir(), "campaign.json")
	data := `{"name":"File Campaign","missions":[{"name":"Only","recruits":2,"phases":[{"name":"P1","aggressionMin":1,"aggressionMax":2,"goals":["kill_all_enemy"]}]}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err = LoadCampaignFile(path)
	if err != nil {
		t.Fatalf("LoadCampaignFile: %v", err)
	}
	if c.Name() != "File Campaign" || c.MissionCount() != 1 {
		t.Fatalf("campaign = %q with %d missions", c.Name(), c.MissionCount())
	}

	if _, err := LoadCampaignFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
