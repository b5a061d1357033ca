// Package main provides a firework particle viewer for tuning the particle
// parameters of the festival page without the title and decorations.
//
// Usage:
//
//	go run ./cmd/particles [flags]
//
// Flags:
//
//	--config <path>   Load particle settings from a festival YAML file
//	--auto-play       Fire a burst at a random position every 300ms
//	--seed <n>        Random seed (0 = time based)
//	--verbose         Enable verbose logging (default off)
//
// Controls:
//
//	Mouse Click       - Spawn a burst at cursor position
//	Space             - Spawn a burst at screen center
//	A                 - Toggle auto-play
//	P                 - Toggle pause (停止推进粒子，观察单帧状态)
//	Up/Down           - Increase/decrease burst count by 5
//	Left/Right        - Decrease/increase gravity by 0.1
//	R                 - Restart with current settings (清空所有粒子)
//	Q/Escape          - Quit
package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/engine"
	"github.com/decker502/festival/pkg/scheduler"
	"github.com/decker502/festival/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const autoPlayInterval = 300 * time.Millisecond

var (
	configFlag   = flag.String("config", "", "Festival config file (default: built-in defaults)")
	autoPlayFlag = flag.Bool("auto-play", false, "Fire random bursts automatically")
	seedFlag     = flag.Int64("seed", 0, "Random seed (0 = time based)")
	verboseFlag  = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

// ParticleViewerGame implements ebiten.Game interface for the particle viewer
type ParticleViewerGame struct {
	cfg *config.FestivalConfig
	rng *rand.Rand

	sched          *scheduler.Scheduler
	engine         *engine.Engine
	particleRender *systems.ParticleRenderSystem

	autoPlay      bool
	lastAutoSpawn time.Time
	paused        bool
	bursts        int

	statusMessage string
}

// NewParticleViewerGame creates a new particle viewer instance
func NewParticleViewerGame(cfg *config.FestivalConfig, seed int64) (*ParticleViewerGame, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &ParticleViewerGame{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		autoPlay: *autoPlayFlag,
	}
	if err := g.restart(); err != nil {
		return nil, err
	}

	log.Printf("Particle Viewer initialized: max=%d burst=%d seed=%d", cfg.Particles.MaxParticles, cfg.Particles.BurstCount, seed)

	// 启动时在屏幕中心放一次烟花，避免空白屏幕
	g.spawn(float64(cfg.Window.Width)/2, float64(cfg.Window.Height)/2)
	return g, nil
}

// restart 用当前参数重建调度器和引擎
func (g *ParticleViewerGame) restart() error {
	if g.sched != nil {
		g.sched.Close()
	}

	g.sched = scheduler.New(nil)
	g.engine = engine.New(g.cfg, g.sched,
		engine.WithRand(g.rng),
		engine.WithBurstListener(func(x, y float64) { g.bursts++ }),
	)

	render, err := systems.NewParticleRenderSystem(g.engine.EntityManager(), g.cfg.Particles)
	if err != nil {
		return fmt.Errorf("failed to create particle renderer: %w", err)
	}
	g.particleRender = render
	g.engine.Start()
	g.updateStatusMessage()
	return nil
}

func (g *ParticleViewerGame) spawn(x, y float64) {
	g.engine.SpawnBurst(x, y)
}

// Update handles input and advances the engine
func (g *ParticleViewerGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.spawn(float64(x), float64(y))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.spawn(float64(g.cfg.Window.Width)/2, float64(g.cfg.Window.Height)/2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.autoPlay = !g.autoPlay
		g.updateStatusMessage()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		g.updateStatusMessage()
	}

	tuned := false
	p := &g.cfg.Particles
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		p.BurstCount += 5
		tuned = true
	case inpututil.IsKeyJustPressed(ebiten.KeyDown) && p.BurstCount > 5:
		p.BurstCount -= 5
		tuned = true
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		p.Gravity += 0.1
		tuned = true
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		p.Gravity -= 0.1
		tuned = true
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		tuned = true
	}
	if tuned {
		if err := g.restart(); err != nil {
			return err
		}
	}

	if g.autoPlay && time.Since(g.lastAutoSpawn) >= autoPlayInterval {
		g.lastAutoSpawn = time.Now()
		x := g.rng.Float64() * float64(g.cfg.Window.Width)
		y := g.rng.Float64() * float64(g.cfg.Window.Height) * 0.6
		g.spawn(x, y)
	}

	if g.paused {
		// 暂停时只触发定时器，不推进粒子
		g.sched.RunTimers()
		return nil
	}
	g.engine.Update()
	return nil
}

// Draw renders particles and the status overlay
func (g *ParticleViewerGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x20, G: 0x08, B: 0x08, A: 0xFF})
	g.particleRender.Draw(screen)
	g.drawUI(screen)
}

func (g *ParticleViewerGame) drawUI(screen *ebiten.Image) {
	p := g.cfg.Particles
	threshold := int(float64(p.MaxParticles) * p.SaturationRatio)
	info := fmt.Sprintf(
		"Particles: %d / %d (saturation > %d)\nBursts: %d\nBurst count: %d  Gravity: %.2f  Damping: %.3f\nLife: %d - %d/frame  Speed: %.1f-%.1f  Size: %.1f-%.1f\n%s",
		g.engine.ParticleCount(), p.MaxParticles, threshold,
		g.bursts,
		p.BurstCount, p.Gravity, p.Damping,
		p.LifeStart, p.LifeStep, p.SpeedMin, p.SpeedMax, p.SizeMin, p.SizeMax,
		g.statusMessage,
	)
	ebitenutil.DebugPrint(screen, info)
	ebitenutil.DebugPrintAt(screen, "Click/Space: burst  A: auto  P: pause  Up/Down: count  Left/Right: gravity  R: restart  Q: quit", 10, g.cfg.Window.Height-20)
}

// Layout returns the logical screen size from the config
func (g *ParticleViewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Window.Width, g.cfg.Window.Height
}

func (g *ParticleViewerGame) updateStatusMessage() {
	g.statusMessage = fmt.Sprintf("Auto-play: %v  Paused: %v", g.autoPlay, g.paused)
}

func main() {
	flag.Parse()

	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultFestivalConfig()
	if *configFlag != "" {
		loaded, err := config.LoadFestivalConfig(*configFlag)
		if err != nil {
			log.SetOutput(os.Stderr)
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	game, err := NewParticleViewerGame(cfg, *seedFlag)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Failed to initialize particle viewer: %v", err)
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("Festival Particle Viewer")

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
