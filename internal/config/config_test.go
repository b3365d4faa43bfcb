package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("duelsim", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.P1 != ControllerRandom || cfg.P2 != ControllerRandom {
		t.Errorf("default controllers = %v/%v, want random/random", cfg.P1, cfg.P2)
	}
	if cfg.Verbosity != VerbosityNormal {
		t.Errorf("default verbosity = %v, want normal", cfg.Verbosity)
	}
	if cfg.Seed != 0 || cfg.StopEvery != nil {
		t.Errorf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse("duelsim", []string{
		"-seed=42", "-deck-seed=7", "-stop-every=p1:turn:5", "-p1=scripted", "-verbosity=debug",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Seed != 42 || cfg.DeckSeed != 7 {
		t.Errorf("seeds = %d/%d, want 42/7", cfg.Seed, cfg.DeckSeed)
	}
	if cfg.P1 != ControllerScripted || cfg.P2 != ControllerRandom {
		t.Errorf("controllers = %v/%v", cfg.P1, cfg.P2)
	}
	if cfg.Verbosity != VerbosityDebug {
		t.Errorf("verbosity = %v, want debug", cfg.Verbosity)
	}
	if cfg.StopEvery == nil || cfg.StopEvery.Who != StopWhoP1 || cfg.StopEvery.Unit != StopUnitTurn || cfg.StopEvery.N != 5 {
		t.Errorf("stop-every = %+v", cfg.StopEvery)
	}
}

func TestParseRejectsUnknownControllerKind(t *testing.T) {
	if _, err := Parse("duelsim", []string{"-p1=psychic"}); err == nil {
		t.Fatal("expected error for unknown controller kind")
	}
}

func TestParseStopEveryRejectsMalformed(t *testing.T) {
	cases := []string{"p1:turn", "bogus:turn:5", "p1:bogus:5", "p1:turn:0", "p1:turn:abc"}
	for _, c := range cases {
		if _, err := ParseStopEvery(c); err == nil {
			t.Errorf("ParseStopEvery(%q): expected error", c)
		}
	}
}
