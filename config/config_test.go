package config

import "testing"

func TestSeekDistanceFeetDefaultsInCombat(t *testing.T) {
	opts := Defaults()
	if got := opts.SeekDistanceFeet(true); got != 30 {
		t.Fatalf("expected default in-combat cap of 30, got %d", got)
	}
}

func TestSeekDistanceFeetDisabledOutOfCombat(t *testing.T) {
	opts := Defaults()
	if got := opts.SeekDistanceFeet(false); got != 0 {
		t.Fatalf("expected no cap out of combat by default, got %d", got)
	}
}

func TestSeekDistanceFeetCustomOverride(t *testing.T) {
	opts := Defaults()
	opts.CustomSeekDistance = 45
	if got := opts.SeekDistanceFeet(true); got != 45 {
		t.Fatalf("expected custom distance 45, got %d", got)
	}
}

func TestLoadMissingFileReturnsDefaultsAndError(t *testing.T) {
	opts, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !opts.AutoVisibilityEnabled {
		t.Fatal("expected defaults to still be populated on error")
	}
}
