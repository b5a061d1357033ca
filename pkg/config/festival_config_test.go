package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultFestivalConfig(t *testing.T) {
	cfg := DefaultFestivalConfig()

	if err := validateFestivalConfig(cfg); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	p := cfg.Particles
	if p.MaxParticles != 400 {
		t.Errorf("MaxParticles = %d, want 400", p.MaxParticles)
	}
	if p.Throttle.Std() != 150*time.Millisecond {
		t.Errorf("Throttle = %v, want 150ms", p.Throttle)
	}
	if p.BurstCount != 35 {
		t.Errorf("BurstCount = %d, want 35", p.BurstCount)
	}
	if p.LifeStart != 80 || p.LifeStep != 2 {
		t.Errorf("Life = %d/%d, want 80/2", p.LifeStart, p.LifeStep)
	}
	if len(p.Palette) != 7 {
		t.Errorf("palette has %d colors, want 7", len(p.Palette))
	}

	w := cfg.Watermarks
	if w.Interval.Std() != 1500*time.Millisecond {
		t.Errorf("watermark interval = %v, want 1.5s", w.Interval)
	}
	if w.Duration.Seconds() != 12 {
		t.Errorf("watermark duration = %v, want 12s", w.Duration)
	}
	if len(w.Words) != 4 {
		t.Errorf("watermark words = %v, want 4 words", w.Words)
	}
}

func TestParseFestivalConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *FestivalConfig)
	}{
		{
			name: "partial config keeps defaults",
			yamlContent: `
particles:
  maxParticles: 200
  throttle: 300ms
watermarks:
  interval: 2.5s
`,
			validate: func(t *testing.T, cfg *FestivalConfig) {
				if cfg.Particles.MaxParticles != 200 {
					t.Errorf("MaxParticles = %d, want 200", cfg.Particles.MaxParticles)
				}
				if cfg.Particles.Throttle.Std() != 300*time.Millisecond {
					t.Errorf("Throttle = %v, want 300ms", cfg.Particles.Throttle)
				}
				if cfg.Particles.BurstCount != 35 {
					t.Errorf("BurstCount = %d, want default 35", cfg.Particles.BurstCount)
				}
				if cfg.Watermarks.Interval.Std() != 2500*time.Millisecond {
					t.Errorf("Interval = %v, want 2.5s", cfg.Watermarks.Interval)
				}
			},
		},
		{
			name: "integer durations are milliseconds",
			yamlContent: `
particles:
  throttle: 75
`,
			validate: func(t *testing.T, cfg *FestivalConfig) {
				if cfg.Particles.Throttle.Std() != 75*time.Millisecond {
					t.Errorf("Throttle = %v, want 75ms", cfg.Particles.Throttle)
				}
			},
		},
		{
			name: "palette replaced",
			yamlContent: `
particles:
  palette: ["gold", "rgb(255, 0, 0)"]
`,
			validate: func(t *testing.T, cfg *FestivalConfig) {
				if len(cfg.Particles.Palette) != 2 {
					t.Errorf("palette = %v, want 2 entries", cfg.Particles.Palette)
				}
			},
		},
		{
			name: "invalid palette color",
			yamlContent: `
particles:
  palette: ["#FFD700", "not-a-color"]
`,
			wantErr:     true,
			errContains: "palette",
		},
		{
			name: "zero max particles",
			yamlContent: `
particles:
  maxParticles: 0
`,
			wantErr:     true,
			errContains: "maxParticles",
		},
		{
			name: "saturation ratio above one",
			yamlContent: `
particles:
  saturationRatio: 1.5
`,
			wantErr:     true,
			errContains: "saturationRatio",
		},
		{
			name: "inverted speed range",
			yamlContent: `
particles:
  speedMin: 10
  speedMax: 5
`,
			wantErr:     true,
			errContains: "speed",
		},
		{
			name: "empty words",
			yamlContent: `
watermarks:
  words: []
`,
			wantErr:     true,
			errContains: "words",
		},
		{
			name: "left range outside screen",
			yamlContent: `
watermarks:
  leftMax: 120
`,
			wantErr:     true,
			errContains: "left range",
		},
		{
			name: "bad duration string",
			yamlContent: `
watermarks:
  duration: twelve
`,
			wantErr:     true,
			errContains: "invalid duration",
		},
		{
			name:        "malformed yaml",
			yamlContent: "particles: [",
			wantErr:     true,
			errContains: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFestivalConfig([]byte(tt.yamlContent))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadFestivalConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "festival.yaml")
	content := `
window:
  title: "测试窗口"
watermarks:
  words: ["福"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFestivalConfig(path)
	if err != nil {
		t.Fatalf("LoadFestivalConfig() error: %v", err)
	}
	if cfg.Window.Title != "测试窗口" {
		t.Errorf("Title = %q, want 测试窗口", cfg.Window.Title)
	}
	if len(cfg.Watermarks.Words) != 1 || cfg.Watermarks.Words[0] != "福" {
		t.Errorf("Words = %v, want [福]", cfg.Watermarks.Words)
	}

	if _, err := LoadFestivalConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestShippedDefaultConfigMatchesDefaults(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", DefaultConfigPath))
	if err != nil {
		t.Fatalf("failed to read shipped config: %v", err)
	}
	cfg, err := ParseFestivalConfig(data)
	if err != nil {
		t.Fatalf("shipped config is invalid: %v", err)
	}

	def := DefaultFestivalConfig()
	if cfg.Particles.MaxParticles != def.Particles.MaxParticles ||
		cfg.Particles.Throttle != def.Particles.Throttle ||
		cfg.Particles.BurstCount != def.Particles.BurstCount ||
		cfg.Watermarks.Interval != def.Watermarks.Interval ||
		cfg.Watermarks.Duration != def.Watermarks.Duration {
		t.Errorf("shipped config drifted from DefaultFestivalConfig: %+v", cfg.Particles)
	}
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	in := struct {
		D Duration `yaml:"d"`
	}{D: Milliseconds(1500)}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), "1.5s") {
		t.Errorf("marshalled duration = %q, want 1.5s", string(data))
	}
}

func TestParsePalette(t *testing.T) {
	palette, err := ParsePalette([]string{"#FFD700", "#FF1744"})
	if err != nil {
		t.Fatalf("ParsePalette error: %v", err)
	}
	gold := palette["#FFD700"]
	if gold.R != 0xFF || gold.G != 0xD7 || gold.B != 0x00 || gold.A != 0xFF {
		t.Errorf("#FFD700 parsed as %+v", gold)
	}

	if _, err := ParsePalette([]string{"#GGGGGG"}); err == nil {
		t.Error("expected error for invalid hex color")
	}
}
