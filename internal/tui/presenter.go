// Package tui 在终端上运行烟花与水印动画
//
// 与图形版共用同一个 Engine：一个终端单元格对应 CellWidth × CellHeight 个引擎像素。
// 所有引擎调用都发生在 Run 的循环 goroutine 上，tcell 的 PollEvent goroutine
// 只负责把事件投递到通道。
package tui

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/engine"
	"github.com/decker502/festival/pkg/scheduler"
	"github.com/decker502/festival/pkg/systems"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	// CellWidth 一个单元格对应的引擎像素宽度
	CellWidth = 8
	// CellHeight 一个单元格对应的引擎像素高度
	CellHeight = 16

	// frameInterval 重绘间隔，约 60 FPS
	frameInterval = 16 * time.Millisecond
	// largeParticleSize 达到此尺寸的粒子用 ● 绘制，否则用 •
	largeParticleSize = 4.5
)

var (
	backgroundColor = tcell.NewRGBColor(0x8B, 0x00, 0x00)
	watermarkColor  = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}
	statusColor     = tcell.NewRGBColor(0xFF, 0xE6, 0x6D)
)

// Presenter 终端渲染器
type Presenter struct {
	screen  tcell.Screen
	cfg     *config.FestivalConfig
	sched   *scheduler.Scheduler
	engine  *engine.Engine
	palette map[string]color.RGBA

	mouseDown bool
	onBurst   func(x, y float64)
}

// Option 配置 Presenter
type Option func(*Presenter)

// WithBurstListener 每次烟花成功生成后调用（用于播放音效）
func WithBurstListener(fn func(x, y float64)) Option {
	return func(p *Presenter) {
		p.onBurst = fn
	}
}

// New 创建终端渲染器
//
// 参数：
//   - screen: 已 Init 的 tcell 屏幕（测试中使用 SimulationScreen）
//   - cfg: 动画配置，窗口尺寸会按屏幕大小重新计算
//   - clock: 时间源，nil 表示系统时钟
func New(screen tcell.Screen, cfg *config.FestivalConfig, clock scheduler.Clock, opts ...Option) (*Presenter, error) {
	palette, err := config.ParsePalette(cfg.Particles.Palette)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	p := &Presenter{
		screen:  screen,
		cfg:     cfg,
		sched:   scheduler.New(clock),
		palette: palette,
	}
	for _, opt := range opts {
		opt(p)
	}

	cols, rows := screen.Size()
	cfg.Window.Width = cols * CellWidth
	cfg.Window.Height = rows * CellHeight

	p.engine = engine.New(cfg, p.sched, engine.WithBurstListener(p.burst))
	p.engine.Start()
	log.Printf("[TUI] 已启动 (%dx%d 单元格)", cols, rows)
	return p, nil
}

func (p *Presenter) burst(x, y float64) {
	if p.onBurst != nil {
		p.onBurst(x, y)
	}
}

// Engine 返回使用的动画引擎
func (p *Presenter) Engine() *engine.Engine {
	return p.engine
}

// HandleEvent 处理一个 tcell 事件
//
// 返回：
//   - bool: false 表示用户要求退出
func (p *Presenter) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q') {
			return false
		}
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !p.mouseDown {
			col, row := ev.Position()
			x, y := CellCenter(col, row)
			p.engine.SpawnBurst(x, y)
		}
		p.mouseDown = pressed
	case *tcell.EventResize:
		cols, rows := p.screen.Size()
		p.cfg.Window.Width = cols * CellWidth
		p.cfg.Window.Height = rows * CellHeight
		p.screen.Sync()
	}
	return true
}

// Frame 泵送调度器并重绘一帧
func (p *Presenter) Frame() {
	p.engine.Update()
	p.Draw()
}

// Draw 绘制当前状态：背景、水印、粒子、状态栏
func (p *Presenter) Draw() {
	bg := tcell.StyleDefault.Background(backgroundColor)
	p.screen.SetStyle(bg)
	p.screen.Clear()

	cols, rows := p.screen.Size()
	now := p.sched.Now()

	for _, w := range p.engine.Watermarks() {
		elapsed := now.Sub(w.CreatedAt).Seconds() - w.Delay
		rise, alpha := systems.WatermarkStyle(elapsed, w.Duration)
		if alpha <= 0 {
			continue
		}
		col := int(w.Left / 100 * float64(cols))
		row := rows - int(rise*float64(rows+1))
		// 水印在终端里比图形版更显眼，亮度提高一些
		fg := toTcell(systems.FadeColor(watermarkColor, alpha*3))
		p.drawText(col, row, w.Text, bg.Foreground(fg))
	}

	lifeStart := p.cfg.Particles.LifeStart
	for _, particle := range p.engine.Particles() {
		col, row := CellAt(particle.X, particle.Y)
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		c, ok := p.palette[particle.Color]
		if !ok {
			c = watermarkColor
		}
		fg := toTcell(systems.FadeColor(c, systems.ParticleAlpha(particle.Life, lifeStart)))
		p.screen.SetContent(col, row, ParticleRune(particle.Size), nil, bg.Foreground(fg))
	}

	status := fmt.Sprintf(" 粒子 %d · 水印 %d · 点击放烟花 · q 退出 ", p.engine.ParticleCount(), p.engine.WatermarkCount())
	p.drawText(0, rows-1, status, bg.Foreground(statusColor).Bold(true))

	p.screen.Show()
}

// drawText 从 (col, row) 开始绘制文字，按显示宽度推进列
func (p *Presenter) drawText(col, row int, s string, style tcell.Style) {
	for _, r := range s {
		p.screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

// Run 运行事件循环，直到用户退出或 ctx 取消
func (p *Presenter) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				// 屏幕已 Fini
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	p.Frame()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !p.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			p.Frame()
		}
	}
}

// Close 停止引擎并关闭调度器
func (p *Presenter) Close() {
	p.engine.Stop()
	p.sched.Close()
}

// CellAt 把引擎像素坐标转换为单元格坐标
func CellAt(x, y float64) (col, row int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(y / CellHeight))
}

// CellCenter 返回单元格中心的引擎像素坐标
func CellCenter(col, row int) (x, y float64) {
	return float64(col*CellWidth + CellWidth/2), float64(row*CellHeight + CellHeight/2)
}

// ParticleRune 按粒子尺寸选择字符
func ParticleRune(size float64) rune {
	if size >= largeParticleSize {
		return '●'
	}
	return '•'
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
