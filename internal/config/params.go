// Package config holds the launch parameters consumed at session start and the
// runtime settings of the host binaries.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Platform selects which asset set a session targets.
type Platform int

const (
	PlatformAny Platform = iota
	PlatformPC
	PlatformAmiga
)

func (p Platform) String() string {
	switch p {
	case PlatformAny:
		return "any"
	case PlatformPC:
		return "pc"
	case PlatformAmiga:
		return "amiga"
	default:
		return "unknown"
	}
}

// ParsePlatform maps a platform name to its Platform. Empty means any.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return PlatformAny, nil
	case "pc", "dos":
		return PlatformPC, nil
	case "amiga":
		return PlatformAmiga, nil
	}
	return PlatformAny, fmt.Errorf("unknown platform %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Env parsing uses it too.
func (p *Platform) UnmarshalText(b []byte) error {
	v, err := ParsePlatform(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

var (
	// ErrRecordAndPlayback indicates both demo modes were requested.
	ErrRecordAndPlayback = errors.New("demo record and demo playback are mutually exclusive")
	// ErrDemoFileRequired indicates a demo mode without a demo file.
	ErrDemoFileRequired = errors.New("demo file is required")
)

// Params is the launch configuration. It is stored in every demo so playback
// starts from the same position the recording did.
type Params struct {
	SkipIntro     bool `json:"skipIntro" env:"SKIP_INTRO"`         // intro screens
	SkipToMission bool `json:"skipToMission" env:"SKIP_TO_MISSION"` // straight into the mission, no recruit screen
	SkipBriefing  bool `json:"skipBriefing" env:"SKIP_BRIEFING"`
	SkipService   bool `json:"skipService" env:"SKIP_SERVICE"` // mission debrief

	WindowMode bool     `json:"windowMode" env:"WINDOW_MODE"`
	Random     bool     `json:"random" env:"RANDOM_SEED"`
	Platform   Platform `json:"platform" env:"PLATFORM"`

	DemoRecord   bool   `json:"demoRecord" env:"DEMO_RECORD"`
	DemoPlayback bool   `json:"demoPlayback" env:"DEMO_PLAYBACK"`
	DemoFile     string `json:"demoFile" env:"DEMO_FILE"`

	CampaignName  string `json:"campaignName" env:"CAMPAIGN"`
	MissionNumber int    `json:"missionNumber" env:"MISSION"`
	PhaseNumber   int    `json:"phaseNumber" env:"PHASE"`
}

// DefaultParams returns the parameters of a plain new game.
func DefaultParams() Params {
	return Params{Platform: PlatformAny}
}

// Validate rejects contradictory launch options.
func (p Params) Validate() error {
	if p.DemoRecord && p.DemoPlayback {
		return ErrRecordAndPlayback
	}
	if (p.DemoRecord || p.DemoPlayback) && strings.TrimSpace(p.DemoFile) == "" {
		return ErrDemoFileRequired
	}
	if p.MissionNumber < 0 || p.PhaseNumber < 0 {
		return fmt.Errorf("mission %d phase %d: must not be negative", p.MissionNumber, p.PhaseNumber)
	}
	return nil
}

// BindFlags registers every option on fs, using the current values as defaults.
func (p *Params) BindFlags(fs *flag.FlagSet) {
	fs.BoolVar(&p.SkipIntro, "skip-intro", p.SkipIntro, "skip the intro screens")
	fs.BoolVar(&p.SkipToMission, "skip-recruit", p.SkipToMission, "skip the recruit screen and go straight into the mission")
	fs.BoolVar(&p.SkipBriefing, "skip-briefing", p.SkipBriefing, "skip the mission briefing")
	fs.BoolVar(&p.SkipService, "skip-service", p.SkipService, "skip the mission debrief")
	fs.BoolVar(&p.WindowMode, "window", p.WindowMode, "start in a window")
	fs.BoolVar(&p.Random, "random", p.Random, "seed the session from a random source")
	fs.TextVar(&p.Platform, "platform", p.Platform, "target platform: any, pc, amiga")
	fs.BoolVar(&p.DemoRecord, "demo-record", p.DemoRecord, "record input to the demo file")
	fs.BoolVar(&p.DemoPlayback, "demo-play", p.DemoPlayback, "play back the demo file")
	fs.StringVar(&p.DemoFile, "demo-file", p.DemoFile, "demo file path")
	fs.StringVar(&p.CampaignName, "campaign", p.CampaignName, "campaign name")
	fs.IntVar(&p.MissionNumber, "mission", p.MissionNumber, "start at mission number (1-based, 0 = first)")
	fs.IntVar(&p.PhaseNumber, "phase", p.PhaseNumber, "start at phase number (1-based, 0 = first)")
}

// ApplyEnv overrides p with any SOLDIER_* environment variables that are set.
func (p *Params) ApplyEnv() error {
	if err := env.ParseWithOptions(p, env.Options{Prefix: "SOLDIER_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ToJSON encodes the parameters.
func (p Params) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// FromJSON replaces p with the decoded parameters. p is untouched on error.
func (p *Params) FromJSON(data []byte) error {
	loaded := DefaultParams()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	*p = loaded
	return nil
}
