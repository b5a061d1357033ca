package scenes

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"strings"

	"github.com/decker502/festival/internal/audio"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/engine"
	"github.com/decker502/festival/pkg/scheduler"
	"github.com/decker502/festival/pkg/systems"
	"github.com/decker502/festival/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/colornames"
)

const (
	// statusDuration 底部状态提示的显示时长（秒）
	statusDuration = 2.0
	// hintFontSize 操作提示字号
	hintFontSize = 16
)

// orb 背景光球
type orb struct {
	fx, fy float64 // 相对屏幕的位置 0~1
	radius float64
	color  color.RGBA
	phase  float64
}

var backgroundOrbs = []orb{
	{fx: 0.15, fy: 0.2, radius: 220, color: color.RGBA{0xFF, 0x6B, 0x6B, 0xFF}, phase: 0},
	{fx: 0.85, fy: 0.3, radius: 260, color: color.RGBA{0xFF, 0xD7, 0x00, 0xFF}, phase: 2.1},
	{fx: 0.5, fy: 0.85, radius: 200, color: color.RGBA{0xFF, 0x8C, 0x42, 0xFF}, phase: 4.2},
}

// HomeScene 首页：标题、祝福语、点击烟花和上升的背景水印
//
// 场景拥有自己的 Scheduler，引擎的帧回调、水印周期定时器和所有移除定时器都挂在上面；
// Close 关闭调度器，离开首页后不会再有任何回调修改状态。
type HomeScene struct {
	services *Services
	cfg      *config.FestivalConfig

	sched  *scheduler.Scheduler
	engine *engine.Engine

	particleRender  *systems.ParticleRenderSystem
	watermarkRender *systems.WatermarkRenderSystem

	titleFace    text.Face
	subtitleFace text.Face
	textFace     text.Face
	hintFace     text.Face

	titleTween *gween.Tween
	titleScale float64
	introWait  float64

	elapsed     float64
	status      string
	statusUntil float64
	closed      bool
}

// NewHomeScene 创建首页场景并启动动画引擎
func NewHomeScene(services *Services) (*HomeScene, error) {
	cfg := services.Config
	s := &HomeScene{
		services:  services,
		cfg:       cfg,
		sched:     scheduler.New(services.Clock),
		introWait: cfg.Title.IntroDelay.Seconds(),
	}
	if d := cfg.Title.IntroDuration.Seconds(); d > 0 {
		s.titleTween = gween.New(0, 1, float32(d), ease.OutBack)
	}

	s.engine = engine.New(cfg, s.sched, engine.WithBurstListener(s.onBurst))

	var err error
	if s.titleFace, err = services.Resources.Face(cfg.Font.TitleSize); err != nil {
		return nil, fmt.Errorf("home scene: %w", err)
	}
	if s.subtitleFace, err = services.Resources.Face(cfg.Font.TitleSize * 0.6); err != nil {
		return nil, fmt.Errorf("home scene: %w", err)
	}
	if s.textFace, err = services.Resources.Face(cfg.Font.TextSize); err != nil {
		return nil, fmt.Errorf("home scene: %w", err)
	}
	if s.hintFace, err = services.Resources.Face(hintFontSize); err != nil {
		return nil, fmt.Errorf("home scene: %w", err)
	}
	watermarkFace, err := services.Resources.Face(cfg.Font.WatermarkSize)
	if err != nil {
		return nil, fmt.Errorf("home scene: %w", err)
	}

	em := s.engine.EntityManager()
	if s.particleRender, err = systems.NewParticleRenderSystem(em, cfg.Particles); err != nil {
		return nil, fmt.Errorf("home scene: %w", err)
	}
	s.watermarkRender = systems.NewWatermarkRenderSystem(em, watermarkFace, colornames.Gold)

	s.engine.Start()
	log.Printf("[HomeScene] 已启动 (粒子上限 %d, 水印间隔 %v)", cfg.Particles.MaxParticles, cfg.Watermarks.Interval)
	return s, nil
}

// Update 处理输入并推进动画
func (s *HomeScene) Update(deltaTime float64) {
	if s.closed {
		return
	}
	s.handleInput()
	s.advance(deltaTime)
}

// advance 推进标题动画并泵送调度器
func (s *HomeScene) advance(deltaTime float64) {
	s.elapsed += deltaTime

	dt := deltaTime
	if s.introWait > 0 {
		s.introWait -= dt
		dt = 0
		if s.introWait < 0 {
			dt = -s.introWait
		}
	}
	if s.introWait <= 0 {
		if s.titleTween == nil {
			s.titleScale = 1
		} else if dt > 0 {
			scale, _ := s.titleTween.Update(float32(dt))
			s.titleScale = float64(scale)
		}
	}

	s.engine.Update()
}

func (s *HomeScene) handleInput() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		s.Click(float64(x), float64(y))
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		s.Click(float64(x), float64(y))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		s.GoToTest()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		s.CopyBlessing()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		s.ToggleSound()
	}
}

// Click 在屏幕坐标处放一次烟花（节流与饱和由引擎处理）
func (s *HomeScene) Click(x, y float64) {
	s.engine.SpawnBurst(x, y)
}

func (s *HomeScene) onBurst(x, y float64) {
	if s.services.Audio == nil {
		return
	}
	s.services.Audio.PlayPop(audio.PitchForX(x, float64(s.cfg.Window.Width)))
}

// GoToTest 跳转到测试页
func (s *HomeScene) GoToTest() {
	s.services.Scenes.RequestNavigate(RouteTest)
}

// BlessingText 返回复制到剪贴板的祝福文字
func (s *HomeScene) BlessingText() string {
	title := s.cfg.Title
	head := strings.TrimSpace(title.Number + " " + strings.Join(title.Lines, " "))
	return head + "\n" + strings.Join(title.Blessings, "\n")
}

// CopyBlessing 复制祝福语到剪贴板
func (s *HomeScene) CopyBlessing() {
	if s.services.Clipboard == nil {
		s.showStatus("剪贴板不可用")
		return
	}
	if err := s.services.Clipboard.WriteText(s.BlessingText()); err != nil {
		log.Printf("[HomeScene] Warning: failed to copy blessing: %v", err)
		s.showStatus("复制失败")
		return
	}
	s.showStatus("祝福已复制")
}

// ToggleSound 切换音效并保存设置
func (s *HomeScene) ToggleSound() {
	settings := s.services.Settings
	if settings == nil {
		return
	}
	if settings.ToggleSound() {
		s.showStatus("音效：开")
	} else {
		s.showStatus("音效：关")
	}
	if err := settings.Save(); err != nil {
		log.Printf("[HomeScene] Warning: failed to save settings: %v", err)
	}
}

func (s *HomeScene) showStatus(msg string) {
	s.status = msg
	s.statusUntil = s.elapsed + statusDuration
}

// Status 返回当前显示的状态提示，已过期时返回空字符串
func (s *HomeScene) Status() string {
	if s.elapsed >= s.statusUntil {
		return ""
	}
	return s.status
}

// Engine 返回首页使用的动画引擎
func (s *HomeScene) Engine() *engine.Engine {
	return s.engine
}

// TitleScale 返回标题当前缩放
func (s *HomeScene) TitleScale() float64 {
	return s.titleScale
}

// Close 停止引擎并关闭调度器
func (s *HomeScene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.engine.Stop()
	s.sched.Close()
	log.Printf("[HomeScene] 已关闭")
}

// Draw 绘制首页
// 图层顺序：背景、水印、光球、粒子、标题与祝福语、底部波浪、提示
func (s *HomeScene) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())

	s.drawBackground(screen, width, height)
	s.watermarkRender.Draw(screen, s.sched.Now())
	s.drawOrbs(screen, width, height)
	s.particleRender.Draw(screen)
	s.drawTitle(screen, width, height)
	s.drawKnots(screen, width, height)
	s.drawWave(screen, width, height)
	s.drawHint(screen, width, height)
}

// drawBackground 纵向渐变背景
func (s *HomeScene) drawBackground(screen *ebiten.Image, width, height float64) {
	const bands = 32
	top := colornames.Firebrick
	bottom := colornames.Darkred
	bandHeight := height / bands
	for i := 0; i < bands; i++ {
		t := float64(i) / (bands - 1)
		c := color.RGBA{
			R: uint8(utils.Lerp(float64(top.R), float64(bottom.R), t)),
			G: uint8(utils.Lerp(float64(top.G), float64(bottom.G), t)),
			B: uint8(utils.Lerp(float64(top.B), float64(bottom.B), t)),
			A: 0xFF,
		}
		vector.DrawFilledRect(screen, 0, float32(float64(i)*bandHeight), float32(width), float32(bandHeight+1), c, false)
	}
}

// drawOrbs 缓慢漂移的光球，用同心圆近似径向渐变
func (s *HomeScene) drawOrbs(screen *ebiten.Image, width, height float64) {
	const rings = 5
	for _, o := range backgroundOrbs {
		cx := o.fx*width + 20*math.Sin(s.elapsed*0.3+o.phase)
		cy := o.fy*height + 20*math.Cos(s.elapsed*0.25+o.phase)
		for r := 0; r < rings; r++ {
			radius := o.radius * (1 - float64(r)/rings)
			vector.DrawFilledCircle(screen, float32(cx), float32(cy), float32(radius), systems.FadeColor(o.color, 0.04), true)
		}
	}
}

// drawTitle 标题（带缩放入场动画）和祝福语
func (s *HomeScene) drawTitle(screen *ebiten.Image, width, height float64) {
	cx := width / 2
	cy := height * 0.34
	title := s.cfg.Title

	if s.titleScale > 0 {
		lineGap := s.cfg.Font.TitleSize * 0.9
		drawScaled := func(str string, face text.Face, dy float64, clr color.Color, alpha float32) {
			op := &text.DrawOptions{}
			op.LayoutOptions.PrimaryAlign = text.AlignCenter
			op.LayoutOptions.SecondaryAlign = text.AlignCenter
			op.GeoM.Translate(0, dy)
			op.GeoM.Scale(s.titleScale, s.titleScale)
			op.GeoM.Translate(cx, cy)
			op.ColorScale.ScaleWithColor(clr)
			op.ColorScale.ScaleAlpha(alpha)
			text.Draw(screen, str, face, op)
		}

		// 光晕
		drawScaled(title.Number, s.titleFace, -lineGap+3, colornames.Orange, 0.45)
		drawScaled(title.Number, s.titleFace, -lineGap, colornames.Gold, 1)
		drawScaled(strings.Join(title.Lines, "  "), s.subtitleFace, 0, colornames.Lightyellow, 1)
	}

	y := cy + s.cfg.Font.TitleSize*1.1
	for _, line := range title.Blessings {
		op := &text.DrawOptions{}
		op.LayoutOptions.PrimaryAlign = text.AlignCenter
		op.LayoutOptions.SecondaryAlign = text.AlignCenter
		op.GeoM.Translate(cx, y)
		op.ColorScale.ScaleWithColor(colornames.Moccasin)
		text.Draw(screen, line, s.textFace, op)
		y += s.cfg.Font.TextSize * 1.6
	}
}

// drawKnots 左右两侧的中国结装饰
func (s *HomeScene) drawKnots(screen *ebiten.Image, width, height float64) {
	const size = 28.0
	swing := 4 * math.Sin(s.elapsed*1.5)
	for _, x := range []float64{70, width - 70} {
		cx := float32(x + swing)
		cy := float32(height * 0.3)
		r := float32(size)
		red := colornames.Red
		vector.StrokeLine(screen, cx, cy-r, cx+r, cy, 3, red, true)
		vector.StrokeLine(screen, cx+r, cy, cx, cy+r, 3, red, true)
		vector.StrokeLine(screen, cx, cy+r, cx-r, cy, 3, red, true)
		vector.StrokeLine(screen, cx-r, cy, cx, cy-r, 3, red, true)
		vector.StrokeLine(screen, cx, cy-r-40, cx, cy-r, 2, colornames.Gold, true)
		for i := float32(-2); i <= 2; i++ {
			vector.StrokeLine(screen, cx, cy+r, cx+i*4, cy+r+36, 2, red, true)
		}
	}
}

// drawWave 底部波浪
func (s *HomeScene) drawWave(screen *ebiten.Image, width, height float64) {
	const (
		column    = 4.0
		baseline  = 40.0
		amplitude = 10.0
	)
	fill := systems.FadeColor(colornames.Gold, 0.25)
	for x := 0.0; x < width; x += column {
		h := baseline + amplitude*math.Sin(x/90+s.elapsed*1.2)
		vector.DrawFilledRect(screen, float32(x), float32(height-h), column, float32(h), fill, false)
	}
}

// drawHint 操作提示与状态提示
func (s *HomeScene) drawHint(screen *ebiten.Image, width, height float64) {
	hint := "点击屏幕放烟花 · T 测试页 · C 复制祝福 · M 音效"
	if utils.IsMobile() {
		hint = "轻触屏幕放烟花"
	}
	if status := s.Status(); status != "" {
		hint = status
	}

	op := &text.DrawOptions{}
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.LayoutOptions.SecondaryAlign = text.AlignCenter
	op.GeoM.Translate(width/2, height-20)
	op.ColorScale.ScaleWithColor(colornames.White)
	op.ColorScale.ScaleAlpha(0.8)
	text.Draw(screen, hint, s.hintFace, op)
}
