package config

import (
	"errors"
	"flag"
	"testing"
)

func TestParamsValidate_RecordAndPlayback(t *testing.T) {
	p := Params{DemoRecord: true, DemoPlayback: true, DemoFile: "a.demo"}
	if err := p.Validate(); !errors.Is(err, ErrRecordAndPlayback) {
		t.Fatalf("expected ErrRecordAndPlayback, got %v", err)
	}
}

func TestParamsValidate_DemoNeedsFile(t *testing.T) {
	p := Params{DemoPlayback: true}
	if err := p.Validate(); !errors.Is(err, ErrDemoFileRequired) {
		t.Fatalf("expected ErrDemoFileRequired, got %v", err)
	}
	p.DemoFile = "run.demo"
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid params, got %v", err)
	}
}

func TestParamsJSON_RoundTrip(t *testing.T) {
	in := Params{
		SkipIntro:     true,
		SkipBriefing:  true,
		Platform:      PlatformAmiga,
		DemoRecord:    true,
		DemoFile:      "mission1.demo",
		CampaignName:  "Cannon Fodder",
		MissionNumber: 3,
		PhaseNumber:   2,
	}
	data, err := in.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out Params
	if err := out.FromJSON(data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestParamsFromJSON_MalformedLeavesValue(t *testing.T) {
	p := Params{CampaignName: "keep"}
	if err := p.FromJSON([]byte(`{"campaignName":`)); err == nil {
		t.Fatal("expected error for truncated json")
	}
	if p.CampaignName != "keep" {
		t.Fatalf("params mutated on failed decode: %+v", p)
	}
}

func TestParamsFromJSON_UnknownPlatform(t *testing.T) {
	var p Params
	if err := p.FromJSON([]byte(`{"platform":"c64"}`)); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestBindFlags(t *testing.T) {
	p := DefaultParams()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p.BindFlags(fs)
	err := fs.Parse([]string{"-demo-play", "-demo-file", "x.demo", "-mission", "4", "-platform", "pc"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.DemoPlayback || p.DemoFile != "x.demo" || p.MissionNumber != 4 || p.Platform != PlatformPC {
		t.Fatalf("flags not bound: %+v", p)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SOLDIER_CAMPAIGN", "Cannon Fodder 2")
	t.Setenv("SOLDIER_SKIP_INTRO", "true")
	t.Setenv("SOLDIER_PLATFORM", "amiga")
	p := Params{MissionNumber: 2}
	if err := p.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if p.CampaignName != "Cannon Fodder 2" || !p.SkipIntro || p.Platform != PlatformAmiga {
		t.Fatalf("env not applied: %+v", p)
	}
	if p.MissionNumber != 2 {
		t.Fatalf("unset env var overwrote mission: %d", p.MissionNumber)
	}
}

func TestLoadRuntime_Defaults(t *testing.T) {
	rt, err := LoadRuntime()
	if err != nil {
		t.Fatalf("load runtime: %v", err)
	}
	if rt.TicksPerSecond != 60 {
		t.Fatalf("default tps = %d, want 60", rt.TicksPerSecond)
	}
}
