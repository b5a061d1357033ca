package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 窗口尺寸默认值（逻辑分辨率，Ebitengine 自动缩放）
const (
	GameWindowWidth  = 1280
	GameWindowHeight = 720
)

// DefaultConfigPath 内嵌默认配置的路径
const DefaultConfigPath = "data/festival.yaml"

// FestivalConfig 节日落地页的顶层配置
type FestivalConfig struct {
	Window     WindowConfig    `yaml:"window"`     // 窗口设置
	Particles  ParticleConfig  `yaml:"particles"`  // 烟花粒子参数
	Watermarks WatermarkConfig `yaml:"watermarks"` // 背景水印参数
	Title      TitleConfig     `yaml:"title"`      // 标题与祝福语
	Font       FontConfig      `yaml:"font"`       // 字体
}

// WindowConfig 窗口配置
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ParticleConfig 烟花粒子配置
type ParticleConfig struct {
	MaxParticles    int      `yaml:"maxParticles"`    // 最大粒子数量，超出时按生成顺序淘汰最旧的
	Throttle        Duration `yaml:"throttle"`        // 点击节流时间
	BurstCount      int      `yaml:"burstCount"`      // 每次烟花的粒子数
	SaturationRatio float64  `yaml:"saturationRatio"` // 粒子数超过 MaxParticles*ratio 时不再生成
	LifeStart       int      `yaml:"lifeStart"`       // 初始生命值
	LifeStep        int      `yaml:"lifeStep"`        // 每帧生命衰减
	Gravity         float64  `yaml:"gravity"`         // 每帧叠加到 vy 的重力
	Damping         float64  `yaml:"damping"`         // 每帧乘到 vx 的空气阻力系数
	SpeedMin        float64  `yaml:"speedMin"`        // 初速度范围 [SpeedMin, SpeedMax)
	SpeedMax        float64  `yaml:"speedMax"`
	SizeMin         float64  `yaml:"sizeMin"` // 粒子尺寸范围 [SizeMin, SizeMax)
	SizeMax         float64  `yaml:"sizeMax"`
	Palette         []string `yaml:"palette"` // CSS 颜色
}

// WatermarkConfig 背景水印配置
type WatermarkConfig struct {
	Words    []string `yaml:"words"`    // 水印词汇
	Interval Duration `yaml:"interval"` // 生成间隔
	Duration Duration `yaml:"duration"` // 单个水印的动画时长，到期后移除
	LeftMin  float64  `yaml:"leftMin"`  // 水平位置范围（百分比）[LeftMin, LeftMax)
	LeftMax  float64  `yaml:"leftMax"`
}

// TitleConfig 标题与祝福语
type TitleConfig struct {
	IntroDelay    Duration `yaml:"introDelay"`    // 标题缩放动画开始前的延迟
	IntroDuration Duration `yaml:"introDuration"` // 标题从 0 缩放到 1 的时长
	Number        string   `yaml:"number"`        // 年份
	Lines         []string `yaml:"lines"`         // 标题文字
	Blessings     []string `yaml:"blessings"`     // 祝福语
}

// FontConfig 字体配置
// Path 为空时使用 Go 内置字体（不含中文字形）
type FontConfig struct {
	Path          string  `yaml:"path"`
	TitleSize     float64 `yaml:"titleSize"`
	TextSize      float64 `yaml:"textSize"`
	WatermarkSize float64 `yaml:"watermarkSize"`
}

// DefaultFestivalConfig 返回默认配置
func DefaultFestivalConfig() *FestivalConfig {
	return &FestivalConfig{
		Window: WindowConfig{
			Width:  GameWindowWidth,
			Height: GameWindowHeight,
			Title:  "2026 马年大吉 · 新年快乐",
		},
		Particles: ParticleConfig{
			MaxParticles:    400,
			Throttle:        Milliseconds(150),
			BurstCount:      35,
			SaturationRatio: 0.8,
			LifeStart:       80,
			LifeStep:        2,
			Gravity:         0.5,
			Damping:         0.99,
			SpeedMin:        5,
			SpeedMax:        10,
			SizeMin:         3,
			SizeMax:         6,
			Palette: []string{
				"#FFD700", // 金色
				"#FF6B6B", // 红色
				"#FF8C42", // 橙色
				"#FFA07A", // 浅橙
				"#FFE66D", // 黄色
				"#FF1744", // 深红
				"#FFB300", // 琥珀金
			},
		},
		Watermarks: WatermarkConfig{
			Words:    []string{"健康", "平安", "暴富", "幸福"},
			Interval: Milliseconds(1500),
			Duration: Milliseconds(12000),
			LeftMin:  10,
			LeftMax:  90,
		},
		Title: TitleConfig{
			IntroDelay:    Milliseconds(100),
			IntroDuration: Milliseconds(800),
			Number:        "2026",
			Lines:         []string{"马年大吉", "新年快乐"},
			Blessings:     []string{"愿新的一年", "平安喜乐 · 万事顺遂", "心想事成 · 万事胜意"},
		},
		Font: FontConfig{
			TitleSize:     72,
			TextSize:      28,
			WatermarkSize: 40,
		},
	}
}

// LoadFestivalConfig 从 YAML 文件加载配置
func LoadFestivalConfig(filePath string) (*FestivalConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read festival config file: %w", err)
	}
	return ParseFestivalConfig(data)
}

// ParseFestivalConfig 解析 YAML 配置
// 未出现在 YAML 中的字段保留默认值
func ParseFestivalConfig(data []byte) (*FestivalConfig, error) {
	cfg := DefaultFestivalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse festival config YAML: %w", err)
	}

	if err := validateFestivalConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid festival config: %w", err)
	}

	return cfg, nil
}

// validateFestivalConfig 验证配置的有效性
func validateFestivalConfig(cfg *FestivalConfig) error {
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}

	p := cfg.Particles
	if p.MaxParticles <= 0 {
		return fmt.Errorf("particles.maxParticles must be > 0, got %d", p.MaxParticles)
	}
	if p.Throttle < 0 {
		return fmt.Errorf("particles.throttle must be >= 0, got %v", p.Throttle)
	}
	if p.BurstCount <= 0 {
		return fmt.Errorf("particles.burstCount must be > 0, got %d", p.BurstCount)
	}
	if p.SaturationRatio <= 0 || p.SaturationRatio > 1 {
		return fmt.Errorf("particles.saturationRatio must be in (0, 1], got %v", p.SaturationRatio)
	}
	if p.LifeStart <= 0 || p.LifeStep <= 0 {
		return fmt.Errorf("particles.lifeStart and particles.lifeStep must be > 0, got %d/%d", p.LifeStart, p.LifeStep)
	}
	if p.Damping < 0 || p.Damping > 1 {
		return fmt.Errorf("particles.damping must be in [0, 1], got %v", p.Damping)
	}
	if p.SpeedMin < 0 || p.SpeedMax < p.SpeedMin {
		return fmt.Errorf("particles speed range [%v, %v) is invalid", p.SpeedMin, p.SpeedMax)
	}
	if p.SizeMin <= 0 || p.SizeMax < p.SizeMin {
		return fmt.Errorf("particles size range [%v, %v) is invalid", p.SizeMin, p.SizeMax)
	}
	if len(p.Palette) == 0 {
		return fmt.Errorf("particles.palette cannot be empty")
	}
	if _, err := ParsePalette(p.Palette); err != nil {
		return fmt.Errorf("particles.palette: %w", err)
	}

	w := cfg.Watermarks
	if len(w.Words) == 0 {
		return fmt.Errorf("watermarks.words cannot be empty")
	}
	if w.Interval <= 0 {
		return fmt.Errorf("watermarks.interval must be > 0, got %v", w.Interval)
	}
	if w.Duration <= 0 {
		return fmt.Errorf("watermarks.duration must be > 0, got %v", w.Duration)
	}
	if w.LeftMin < 0 || w.LeftMax > 100 || w.LeftMax < w.LeftMin {
		return fmt.Errorf("watermarks left range [%v, %v) must lie within [0, 100]", w.LeftMin, w.LeftMax)
	}

	if cfg.Title.IntroDelay < 0 || cfg.Title.IntroDuration < 0 {
		return fmt.Errorf("title intro timings must be >= 0")
	}

	return nil
}
