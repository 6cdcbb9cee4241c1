package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Runtime holds host settings that are not part of a recorded session.
type Runtime struct {
	SaveDB         string `env:"SOLDIER_SAVE_DB" envDefault:"soldier-campaign.db"`
	CampaignFile   string `env:"SOLDIER_CAMPAIGN_FILE"`
	TicksPerSecond int    `env:"SOLDIER_TPS" envDefault:"60"`
	VerboseJournal bool   `env:"SOLDIER_VERBOSE_JOURNAL"`
}

// LoadRuntime reads runtime settings from the environment.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}
	if rt.TicksPerSecond <= 0 {
		return Runtime{}, fmt.Errorf("SOLDIER_TPS must be > 0, got %d", rt.TicksPerSecond)
	}
	return rt, nil
}
