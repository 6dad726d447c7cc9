package server

import "testing"

func TestNormalizedFillsEveryZeroField(t *testing.T) {
	cfg := WorldConfig{}.normalized()

	if cfg.Width != defaultWorldWidth || cfg.Height != defaultWorldHeight {
		t.Fatalf("unexpected default bounds: %vx%v", cfg.Width, cfg.Height)
	}
	if cfg.TickRate != tickRate {
		t.Fatalf("unexpected default tick rate: %d", cfg.TickRate)
	}
	if cfg.TargetFoodCount != defaultTargetFoodCount {
		t.Fatalf("unexpected default food target: %d", cfg.TargetFoodCount)
	}
	if cfg.MaxClients != defaultMaxClients {
		t.Fatalf("unexpected default capacity: %d", cfg.MaxClients)
	}
	if cfg.KeyframeInterval != defaultKeyframeInterval {
		t.Fatalf("unexpected default keyframe interval: %d", cfg.KeyframeInterval)
	}
}

func TestNormalizedKeepsExplicitValues(t *testing.T) {
	cfg := WorldConfig{Width: 500, TickRate: 20}.normalized()

	if cfg.Width != 500 {
		t.Fatalf("explicit width overridden: %v", cfg.Width)
	}
	if cfg.TickRate != 20 {
		t.Fatalf("explicit tick rate overridden: %d", cfg.TickRate)
	}
	if cfg.Height != defaultWorldHeight {
		t.Fatalf("zero height not defaulted: %v", cfg.Height)
	}
}

func TestColorForSkinIsDeterministicAndTotal(t *testing.T) {
	if colorForSkin(0) != skinPalette[0] {
		t.Fatalf("skin 0 must map to the first palette entry")
	}
	if colorForSkin(len(skinPalette)) != skinPalette[0] {
		t.Fatalf("skin selection must wrap around the palette")
	}
	if colorForSkin(-3) == "" {
		t.Fatalf("negative skins must still resolve")
	}
	if colorForSkin(7) != colorForSkin(7) {
		t.Fatalf("skin mapping must be stable")
	}
}
